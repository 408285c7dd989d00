// Package codec applies the field cipher to designated fields of a record,
// either a generic map or a struct whose fields carry the vault tag.
package codec

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/alexandercyber0x0/Idea-Hub-1/internal/crypto"
	"github.com/hengadev/errsx"
)

// StructTag is the struct tag key consulted by EncryptStruct and DecryptStruct.
const StructTag = "vault"

// Record is a generic record: field name to value.
type Record map[string]any

// DefaultFields are the fields treated as sensitive when none are given.
var DefaultFields = []string{"description", "transcript", "summary", "reelLinks", "notes"}

func fieldsOrDefault(fields []string) []string {
	if len(fields) == 0 {
		return DefaultFields
	}
	return fields
}

// EncryptRecord returns a copy of rec with every designated non-empty string
// field sealed. Tagged envelopes, empty, nil and non-string values are left as
// they are, so encrypting twice never double-wraps a field. Everything else is
// sealed, including text that only looks like an envelope.
func EncryptRecord(ctx context.Context, rec Record, s *crypto.Session, fields ...string) (Record, error) {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}

	for _, name := range fieldsOrDefault(fields) {
		str, ok := out[name].(string)
		if !ok || str == "" || crypto.IsTaggedEnvelope(str) {
			continue
		}
		sealed, err := s.Seal(ctx, str)
		if err != nil {
			return nil, fmt.Errorf("encrypt field %q: %w", name, err)
		}
		out[name] = sealed
	}
	return out, nil
}

// DecryptRecord returns a copy of rec with every designated sealed field
// opened. A tagged field that cannot be opened is set to nil and reported in
// the returned errsx.Map error; the partially decrypted record is still
// returned. An untagged value shaped like an envelope that does not open is
// legacy plaintext and comes back unchanged.
func DecryptRecord(ctx context.Context, rec Record, s *crypto.Session, fields ...string) (Record, error) {
	var errs errsx.Map

	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}

	for _, name := range fieldsOrDefault(fields) {
		str, ok := out[name].(string)
		if !ok || !crypto.IsSealed(str) {
			continue
		}
		plain, err := openValue(ctx, s, str)
		if err != nil {
			out[name] = nil
			errs.Set(name, err)
			continue
		}
		out[name] = plain
	}

	if !errs.IsEmpty() {
		return out, errs.AsError()
	}
	return out, nil
}

// EncryptStruct seals every string or *string field of the struct pointed to
// by ptr that is tagged vault:"encrypt".
func EncryptStruct(ctx context.Context, ptr any, s *crypto.Session) error {
	fields, err := taggedFields(ptr)
	if err != nil {
		return err
	}

	for _, f := range fields {
		str, ok := f.get()
		if !ok || str == "" || crypto.IsTaggedEnvelope(str) {
			continue
		}
		sealed, err := s.Seal(ctx, str)
		if err != nil {
			return fmt.Errorf("encrypt field %q: %w", f.name, err)
		}
		f.set(sealed)
	}
	return nil
}

// DecryptStruct opens every sealed field tagged vault:"encrypt". Tagged fields
// that fail to open are cleared (a *string becomes nil) and listed in the
// returned errsx.Map error; untagged look-alikes are kept as plaintext.
func DecryptStruct(ctx context.Context, ptr any, s *crypto.Session) error {
	fields, err := taggedFields(ptr)
	if err != nil {
		return err
	}

	var errs errsx.Map
	for _, f := range fields {
		str, ok := f.get()
		if !ok || !crypto.IsSealed(str) {
			continue
		}
		plain, err := openValue(ctx, s, str)
		if err != nil {
			f.clear()
			errs.Set(f.name, err)
			continue
		}
		f.set(plain)
	}

	if !errs.IsEmpty() {
		return errs.AsError()
	}
	return nil
}

// openValue opens a sealed value. Only a tagged envelope can fail: a bare
// shape the session cannot open is returned as it is.
func openValue(ctx context.Context, s *crypto.Session, str string) (string, error) {
	plain, err := s.Open(ctx, str)
	if err != nil && !crypto.IsTagged(str) && errors.Is(err, crypto.ErrDecryptionFailed) {
		return str, nil
	}
	return plain, err
}

// FailedFields lists the field names reported by a DecryptRecord or
// DecryptStruct error. It returns nil for any other error.
func FailedFields(err error) []string {
	var m errsx.Map
	if !errors.As(err, &m) {
		return nil
	}
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	return names
}

type field struct {
	name  string
	value reflect.Value
}

func (f field) get() (string, bool) {
	switch f.value.Kind() {
	case reflect.String:
		return f.value.String(), true
	case reflect.Ptr:
		if f.value.IsNil() {
			return "", false
		}
		return f.value.Elem().String(), true
	}
	return "", false
}

func (f field) set(v string) {
	switch f.value.Kind() {
	case reflect.String:
		f.value.SetString(v)
	case reflect.Ptr:
		f.value.Set(reflect.ValueOf(&v))
	}
}

func (f field) clear() {
	f.value.Set(reflect.Zero(f.value.Type()))
}

func taggedFields(ptr any) ([]field, error) {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("codec: expected pointer to struct, got %T", ptr)
	}
	v = v.Elem()
	t := v.Type()

	var fields []field
	for i := range t.NumField() {
		sf := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() || !hasOption(sf.Tag.Get(StructTag), "encrypt") {
			continue
		}
		switch {
		case sf.Type.Kind() == reflect.String:
		case sf.Type.Kind() == reflect.Ptr && sf.Type.Elem().Kind() == reflect.String:
		default:
			return nil, fmt.Errorf("codec: field %s tagged for encryption must be a string, got %s", sf.Name, sf.Type)
		}
		fields = append(fields, field{name: jsonName(sf), value: fv})
	}
	return fields, nil
}

func hasOption(tag, option string) bool {
	for _, part := range strings.Split(tag, ",") {
		if strings.TrimSpace(part) == option {
			return true
		}
	}
	return false
}

// jsonName reports a field by its JSON name so errors match the wire format.
func jsonName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return sf.Name
	}
	return name
}
