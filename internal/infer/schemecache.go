package infer

import (
	"bytes"
	"crypto/sha256"
	"database/sql"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/script-lang/script/internal/ast"
	"github.com/script-lang/script/internal/types"
)

func init() {
	gob.Register(types.TPrim(0))
	gob.Register(types.TUnknown{})
	gob.Register(types.TVar{})
	gob.Register(types.TFunc{})
	gob.Register(types.TArray{})
	gob.Register(types.TGeneric{})
	gob.Register(types.TStruct{})
	gob.Register(types.TEnum{})
}

// SchemeCache persists generalized schemes across runs, keyed by module path
// and item name. A fingerprint of the item's signature guards staleness: a
// mismatch is simply a miss, never an error.
type SchemeCache struct {
	db *sql.DB
}

const schemeCacheSchema = `
CREATE TABLE IF NOT EXISTS schemes (
	module      TEXT NOT NULL,
	name        TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	scheme      BLOB NOT NULL,
	PRIMARY KEY (module, name)
);`

func OpenSchemeCache(path string) (*SchemeCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemeCacheSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SchemeCache{db: db}, nil
}

func (c *SchemeCache) Close() error {
	return c.db.Close()
}

// schemeRecord is the gob shape; Scheme itself is stored indirectly so the
// on-disk form stays decoupled from in-memory field changes.
type schemeRecord struct {
	Vars   []uint32
	Bounds map[uint32][]string
	Type   types.Type
}

func (c *SchemeCache) Put(module, name, fingerprint string, s Scheme) error {
	var buf bytes.Buffer
	rec := schemeRecord{Vars: s.Vars, Bounds: s.Bounds, Type: s.Type}
	if err := gob.NewEncoder(&buf).Encode(&rec); err != nil {
		return err
	}
	_, err := c.db.Exec(
		`INSERT INTO schemes (module, name, fingerprint, scheme) VALUES (?, ?, ?, ?)
		 ON CONFLICT (module, name) DO UPDATE SET fingerprint = excluded.fingerprint, scheme = excluded.scheme`,
		module, name, fingerprint, buf.Bytes(),
	)
	return err
}

// Get reports (scheme, true, nil) on a hit. A stored row whose fingerprint
// does not match, or a row that fails to decode, counts as a miss.
func (c *SchemeCache) Get(module, name, fingerprint string) (Scheme, bool, error) {
	var storedFP string
	var blob []byte
	row := c.db.QueryRow(`SELECT fingerprint, scheme FROM schemes WHERE module = ? AND name = ?`, module, name)
	if err := row.Scan(&storedFP, &blob); err != nil {
		if err == sql.ErrNoRows {
			return Scheme{}, false, nil
		}
		return Scheme{}, false, err
	}
	if storedFP != fingerprint {
		return Scheme{}, false, nil
	}
	var rec schemeRecord
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&rec); err != nil {
		return Scheme{}, false, nil
	}
	return Scheme{Vars: rec.Vars, Bounds: rec.Bounds, Type: rec.Type}, true, nil
}

// fingerprint hashes the visible signature of a function declaration. For a
// fully annotated declaration the signature carries everything its scheme
// depends on. Unannotated declarations derive their scheme from the body, so
// the body's source extent joins the hash; editing the body shifts its span
// and invalidates the entry.
func fingerprint(fd *ast.FunctionDeclaration) string {
	var b strings.Builder
	b.WriteString(fd.Name.Value)
	b.WriteByte('[')
	for _, tp := range fd.TypeParams {
		b.WriteString(tp.Name)
		for _, bound := range tp.Bounds {
			b.WriteByte(':')
			b.WriteString(bound)
		}
		b.WriteByte(',')
	}
	b.WriteByte(']')
	b.WriteByte('(')
	fullyAnnotated := true
	for _, p := range fd.Parameters {
		if p.Type == nil {
			fullyAnnotated = false
			b.WriteByte('_')
		} else {
			b.WriteString(p.Type.AnnotationString())
		}
		b.WriteByte(',')
	}
	b.WriteByte(')')
	if fd.ReturnType != nil {
		b.WriteString(fd.ReturnType.AnnotationString())
	} else {
		fullyAnnotated = false
	}
	if !fullyAnnotated && fd.Body != nil {
		span := fd.Body.Token.Span
		fmt.Fprintf(&b, "{%d:%d}", span.Start.Offset, span.End.Offset)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
