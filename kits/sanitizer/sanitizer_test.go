package sanitizer_test

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/froppa/sanitary/kits/sanitizer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
)

var sensitiveKeys = []string{
	"password",
	"email",
	"email_1",
	"firstname",
	"lastname",
	"authentication",
	"refresh",
	"auth",
}

var sensitivePatterns = []string{
	`'Authentication':`,
	`"Authentication":`,
	`'Refresh':`,
	`"Refresh":`,
	`Bearer `,
}

const contextID = "cxt_fe76c000000000000000000_0000000000000"

func newSanitizer(t *testing.T, opts ...sanitizer.Option) *sanitizer.Sanitizer {
	t.Helper()
	s, err := sanitizer.New(opts...)
	require.NoError(t, err)
	return s
}

func mustParse(t *testing.T, doc string) sanitizer.Value {
	t.Helper()
	v, err := sanitizer.ParseJSON([]byte(doc))
	require.NoError(t, err)
	return v
}

func sanitize(t *testing.T, s *sanitizer.Sanitizer, v sanitizer.Value) sanitizer.Value {
	t.Helper()
	out, err := s.Sanitize(v)
	require.NoError(t, err)
	return out
}

func text(t *testing.T, v sanitizer.Value, path ...string) string {
	t.Helper()
	for _, p := range path {
		next, ok := v.Get(p)
		require.Truef(t, ok, "missing key %q in %s", p, v)
		v = next
	}
	require.Equal(t, sanitizer.KindText, v.Kind(), "value at %v", path)
	return v.AsText()
}

func TestSanitize_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		opts []sanitizer.Option
		in   string
		want string
	}{
		{
			name: "flat key",
			opts: []sanitizer.Option{sanitizer.WithKeys("email")},
			in:   `{"email":"a@b.com","x":1}`,
			want: `{"email":"********","x":1}`,
		},
		{
			name: "nested key",
			opts: []sanitizer.Option{sanitizer.WithKeys("password")},
			in:   `{"event":{"password":"p"}}`,
			want: `{"event":{"password":"********"}}`,
		},
		{
			name: "sequence order",
			opts: []sanitizer.Option{sanitizer.WithPatterns("Bearer ")},
			in:   `[1,"Bearer x","ok"]`,
			want: `[1,"` + sanitizer.DefaultMessage + `","ok"]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSanitizer(t, tt.opts...)
			out := sanitize(t, s, mustParse(t, tt.in))
			b, err := out.MarshalJSON()
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}

	t.Run("bearer text", func(t *testing.T) {
		s := newSanitizer(t, sanitizer.WithPatterns("Bearer "))
		out := sanitize(t, s, sanitizer.Text("Bearer token123"))
		assert.Equal(t, sanitizer.DefaultMessage, out.AsText())
	})
}

func TestSanitize_SensitiveFieldsAreCleaned(t *testing.T) {
	s := newSanitizer(t, sanitizer.WithKeys(sensitiveKeys...))
	in := sanitizer.Mapping(
		sanitizer.Entry{Key: "Email", Value: sanitizer.Text("user@domain.xyz")},
		sanitizer.Entry{Key: "password", Value: sanitizer.Text("this is a sensitive value")},
	)

	out := sanitize(t, s, in)

	want := sanitizer.Mapping(
		sanitizer.Entry{Key: "Email", Value: sanitizer.Text("********")},
		sanitizer.Entry{Key: "password", Value: sanitizer.Text("********")},
	)
	assert.True(t, want.Equal(out), "got %s", out)
}

func TestSanitize_CustomKeysAreCaseInsensitive(t *testing.T) {
	s := newSanitizer(t, sanitizer.WithKeys("illegalkey", "FOO"))
	out := sanitize(t, s, mustParse(t, `{"context_id":"`+contextID+`","illegalKey":"blabla","Foo":{"deep":1}}`))

	assert.Equal(t, "********", text(t, out, "illegalKey"))
	assert.Equal(t, "********", text(t, out, "Foo"))
	assert.Equal(t, contextID, text(t, out, "context_id"))
}

func TestSanitize_ComplexObject(t *testing.T) {
	doc := `{
		"context": {"email": "sensitive@email.address"},
		"context_id": "` + contextID + `",
		"parameters": {
			"context": {"callerUserId": null},
			"body": {"email": "sensitive@email.address", "password": "sensitive_password"}
		},
		"response": {"status": "OK", "auth": "eyJra...", "refresh": "eyJjd...", "email_1": "user@domain"},
		"Authentication": "eyJra...",
		"request_type": "http",
		"email": "sensitive@email.address",
		"password": "sensitive_value",
		"event": "Request",
		"level": "info",
		"as_list": [
			{"firstName": "Sensitive First Name", "lastName": "Sensitive Last Name", "callerUserId": "000000000000"},
			{"firstName": "Sensitive First Name", "lastName": "Sensitive Last Name", "callerUserId": "000000000000"}
		],
		"another_list": ["1", "2"]
	}`
	in := mustParse(t, doc)
	s := newSanitizer(t, sanitizer.WithKeys(sensitiveKeys...))

	out := sanitize(t, s, in)

	for _, path := range [][]string{
		{"email"},
		{"password"},
		{"parameters", "body", "email"},
		{"parameters", "body", "password"},
		{"context", "email"},
		{"response", "auth"},
		{"response", "refresh"},
		{"response", "email_1"},
		{"Authentication"},
	} {
		assert.Equal(t, "********", text(t, out, path...), "path %v", path)
	}
	list, ok := out.Get("as_list")
	require.True(t, ok)
	for i := 0; i < list.Len(); i++ {
		assert.Equal(t, "********", text(t, list.Index(i), "firstName"))
		assert.Equal(t, "********", text(t, list.Index(i), "lastName"))
		assert.Equal(t, "000000000000", text(t, list.Index(i), "callerUserId"))
	}
	assert.Equal(t, "OK", text(t, out, "response", "status"))
	assert.False(t, in.Equal(out))

	// "another_list" holds "1" and "2", which decode as embedded JSON numbers.
	another, _ := out.Get("another_list")
	n, integral := another.Index(0).AsInt()
	assert.True(t, integral)
	assert.EqualValues(t, 1, n)
}

func TestSanitize_PreservesKeyOrderAndCasing(t *testing.T) {
	s := newSanitizer(t, sanitizer.WithKeys("b"))
	out := sanitize(t, s, mustParse(t, `{"z":1,"B":2,"a":{"y":1,"x":2}}`))

	b, err := out.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"B":"********","a":{"y":1,"x":2}}`, string(b))
}

func TestSanitize_ScalarsUnchanged(t *testing.T) {
	s := newSanitizer(t, sanitizer.WithKeys(sensitiveKeys...), sanitizer.WithPatterns(sensitivePatterns...))
	for _, v := range []sanitizer.Value{
		sanitizer.Null(),
		sanitizer.Bool(true),
		sanitizer.Bool(false),
		sanitizer.Int(123),
		sanitizer.Int(-9),
		sanitizer.Float(123.45),
		sanitizer.Float(0),
	} {
		out := sanitize(t, s, v)
		assert.Equal(t, v.Kind(), out.Kind())
		assert.True(t, v.Equal(out), "%s changed to %s", v, out)
	}

	out := sanitize(t, s, mustParse(t, `{"int_field":123,"float_field":123.45}`))
	i, _ := out.Get("int_field")
	n, integral := i.AsInt()
	assert.True(t, integral)
	assert.EqualValues(t, 123, n)
	f, _ := out.Get("float_field")
	assert.True(t, f.IsFloat())
	assert.Equal(t, 123.45, f.AsFloat())
}

func TestSanitize_DecimalBecomesFloat(t *testing.T) {
	s := newSanitizer(t, sanitizer.WithKeys(sensitiveKeys...))
	in := sanitizer.Mapping(
		sanitizer.Entry{Key: "context_id", Value: sanitizer.Text(contextID)},
		sanitizer.Entry{Key: "decimal_field", Value: sanitizer.Decimal(decimal.RequireFromString("123.45"))},
		sanitizer.Entry{Key: "event", Value: sanitizer.Text("some random text")},
	)

	out := sanitize(t, s, in)

	d, ok := out.Get("decimal_field")
	require.True(t, ok)
	assert.Equal(t, sanitizer.KindNumber, d.Kind())
	assert.True(t, d.IsFloat())
	assert.Equal(t, 123.45, d.AsFloat())
}

func TestSanitize_TextPatterns(t *testing.T) {
	s := newSanitizer(t, sanitizer.WithPatterns(sensitivePatterns...))

	for _, msg := range []string{
		"{\n\"textPayload\": \"Response Headers: {'Authentication': 'Bearer sensitive_info_auth_token',\n'Refresh': 'sensitive_info_refresh_token'}\",\n}",
		"some random text 'Bearer sensitive_info_auth_token'",
		"{'Refresh': 'sensitive_info_refresh_token'}",
	} {
		out := sanitize(t, s, sanitizer.Text(msg))
		assert.True(t, strings.HasPrefix(out.AsText(), "#### WARNING:"), "message %q", msg)
	}

	plain := sanitize(t, s, sanitizer.Text("some random text"))
	assert.Equal(t, "some random text", plain.AsText())
}

func TestSanitize_PatternsAreCaseSensitiveAsAuthored(t *testing.T) {
	s := newSanitizer(t, sanitizer.WithPatterns("Bearer ", "(?i)secret"))

	assert.Equal(t, "bearer x", sanitize(t, s, sanitizer.Text("bearer x")).AsText())
	assert.Equal(t, sanitizer.DefaultMessage, sanitize(t, s, sanitizer.Text("my SECRET")).AsText())
}

func TestSanitize_TextInContainers(t *testing.T) {
	s := newSanitizer(t, sanitizer.WithPatterns(sensitivePatterns...))
	in := mustParse(t, `{
		"context_id": "`+contextID+`",
		"request_type": "http",
		"str_field": "Bearer sensitive_info_auth_token",
		"list_field": ["http", "Bearer sensitive_info_auth_token", "blabla"],
		"dict_field": {"a": "http", "b": "Bearer sensitive_info_auth_token", "c": "blabla"},
		"event": "some random text"
	}`)

	out := sanitize(t, s, in)

	assert.Equal(t, sanitizer.DefaultMessage, text(t, out, "str_field"))
	assert.Equal(t, "http", text(t, out, "request_type"))
	assert.Equal(t, contextID, text(t, out, "context_id"))
	assert.Equal(t, "some random text", text(t, out, "event"))
	list, _ := out.Get("list_field")
	assert.Equal(t, "http", list.Index(0).AsText())
	assert.Equal(t, sanitizer.DefaultMessage, list.Index(1).AsText())
	assert.Equal(t, "blabla", list.Index(2).AsText())
	assert.Equal(t, "http", text(t, out, "dict_field", "a"))
	assert.Equal(t, sanitizer.DefaultMessage, text(t, out, "dict_field", "b"))
	assert.Equal(t, "blabla", text(t, out, "dict_field", "c"))
}

func TestSanitize_SetKeepsMembership(t *testing.T) {
	s := newSanitizer(t, sanitizer.WithPatterns(sensitivePatterns...))
	in := sanitizer.Set(
		sanitizer.Text("http"),
		sanitizer.Text("Bearer sensitive_info_auth_token"),
		sanitizer.Text("blabla"),
	)

	out := sanitize(t, s, in)

	require.Equal(t, sanitizer.KindSet, out.Kind())
	var got []string
	for _, e := range out.Elems() {
		got = append(got, e.AsText())
	}
	sort.Strings(got)
	assert.Equal(t, []string{sanitizer.DefaultMessage, "blabla", "http"}, got)

	want := sanitizer.Set(sanitizer.Text("blabla"), sanitizer.Text(sanitizer.DefaultMessage), sanitizer.Text("http"))
	assert.True(t, want.Equal(out))
}

func TestSanitize_EmbeddedJSONIsSanitized(t *testing.T) {
	s := newSanitizer(t, sanitizer.WithKeys("password"))
	in := sanitizer.Mapping(sanitizer.Entry{
		Key:   "payload",
		Value: sanitizer.Text(`{"user":"bob","password":"hunter2","nested":"{\"password\":\"x\"}"}`),
	})

	out := sanitize(t, s, in)

	assert.Equal(t, "********", text(t, out, "payload", "password"))
	assert.Equal(t, "bob", text(t, out, "payload", "user"))
	assert.Equal(t, "********", text(t, out, "payload", "nested", "password"))
}

func TestSanitize_EmbeddedJSONScalars(t *testing.T) {
	s := newSanitizer(t, sanitizer.WithPatterns("Bearer "))

	assert.Equal(t, sanitizer.KindNumber, sanitize(t, s, sanitizer.Text("42")).Kind())
	assert.Equal(t, sanitizer.KindNull, sanitize(t, s, sanitizer.Text(" null ")).Kind())
	assert.Equal(t, sanitizer.DefaultMessage, sanitize(t, s, sanitizer.Text(`"Bearer abc"`)).AsText())
	// Not a complete document: treated as text.
	assert.Equal(t, "42 apples", sanitize(t, s, sanitizer.Text("42 apples")).AsText())
	assert.Equal(t, "{broken", sanitize(t, s, sanitizer.Text("{broken")).AsText())
	assert.Equal(t, "", sanitize(t, s, sanitizer.Text("")).AsText())
}

func TestSanitize_MatchedKeyIsNotRecursed(t *testing.T) {
	var seen []string
	s := newSanitizer(t,
		sanitizer.WithKeys("credentials", "password"),
		sanitizer.WithReplacement(sanitizer.Transform(func(in string) (string, error) {
			seen = append(seen, in)
			return "masked", nil
		})),
	)

	out := sanitize(t, s, mustParse(t, `{"credentials":{"password":"p","user":"u"}}`))

	assert.Equal(t, "masked", text(t, out, "credentials"))
	require.Len(t, seen, 1)
	assert.JSONEq(t, `{"password":"p","user":"u"}`, seen[0])
}

func TestSanitize_Idempotent(t *testing.T) {
	s := newSanitizer(t, sanitizer.WithKeys(sensitiveKeys...), sanitizer.WithPatterns(sensitivePatterns...))
	inputs := []sanitizer.Value{
		mustParse(t, `{"email":"a@b.com","x":[1,2.5,"Bearer t",{"Auth":{"k":1}}],"msg":"{\"password\":\"p\"}"}`),
		sanitizer.Text("Bearer abc"),
		sanitizer.Text("17"),
		sanitizer.Decimal(decimal.RequireFromString("1.10")),
		sanitizer.Set(sanitizer.Text("a"), sanitizer.Text("Bearer b")),
		sanitizer.Opaque(struct{ A int }{1}),
	}
	for _, in := range inputs {
		once := sanitize(t, s, in)
		twice := sanitize(t, s, once)
		assert.True(t, once.Equal(twice), "sanitize not idempotent for %s: %s vs %s", in, once, twice)
	}
}

func TestSanitize_DoesNotMutateInput(t *testing.T) {
	s := newSanitizer(t, sanitizer.WithKeys("password"))
	in := mustParse(t, `{"user":{"password":"p"}}`)
	before, err := in.MarshalJSON()
	require.NoError(t, err)

	_ = sanitize(t, s, in)

	after, err := in.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestSanitize_HashReplacement(t *testing.T) {
	cases := map[string]func() hash.Hash{
		"sha256":   sha256.New,
		"sha3_256": sha3.New256,
		"blake2b": func() hash.Hash {
			h, _ := blake2b.New512(nil)
			return h
		},
		"blake2s": func() hash.Hash {
			h, _ := blake2s.New256(nil)
			return h
		},
	}
	for name, newHash := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := sanitizer.HashByName(name, 0)
			require.NoError(t, err)
			s := newSanitizer(t, sanitizer.WithKeys("email", "password"), sanitizer.WithReplacement(r))

			out := sanitize(t, s, mustParse(t, `{"email":"user@domain.xyz","password":"this is a sensitive value","safe_value":"this is not sensitive"}`))

			assert.Equal(t, "this is not sensitive", text(t, out, "safe_value"))
			assert.Equal(t, hexOf(newHash, "user@domain.xyz"), text(t, out, "email"))
			assert.Equal(t, hexOf(newHash, "this is a sensitive value"), text(t, out, "password"))
		})
	}
}

func TestSanitize_EveryNamedHash(t *testing.T) {
	for _, name := range sanitizer.HashNames() {
		t.Run(name, func(t *testing.T) {
			r, err := sanitizer.HashByName(strings.ToUpper(name), 0)
			require.NoError(t, err)
			s := newSanitizer(t, sanitizer.WithKeys("secret"), sanitizer.WithReplacement(r))

			out := sanitize(t, s, mustParse(t, `{"secret":"blabla"}`))

			got := text(t, out, "secret")
			_, err = hex.DecodeString(got)
			require.NoError(t, err)
			assert.NotEqual(t, "blabla", got)
			if sanitizer.IsExtendable(name) {
				assert.Len(t, got, 2*sanitizer.DefaultExtendableLength)
			}
		})
	}
}

func TestSanitize_ExtendableHashLength(t *testing.T) {
	s := newSanitizer(t,
		sanitizer.WithKeys("token"),
		sanitizer.WithReplacement(sanitizer.ExtendableHash(sha3.NewShake128, 16)),
	)

	out := sanitize(t, s, mustParse(t, `{"token":"abc"}`))

	want := make([]byte, 16)
	h := sha3.NewShake128()
	h.Write([]byte("abc"))
	_, _ = h.Read(want)
	assert.Equal(t, hex.EncodeToString(want), text(t, out, "token"))
}

func TestSanitize_HashCoercesNonTextToText(t *testing.T) {
	s := newSanitizer(t, sanitizer.WithKeys("pin"), sanitizer.WithReplacement(sanitizer.Hash(sha256.New)))

	out := sanitize(t, s, mustParse(t, `{"pin":1234}`))

	assert.Equal(t, hexOf(sha256.New, "1234"), text(t, out, "pin"))
}

func TestSanitize_TransformReplacement(t *testing.T) {
	s := newSanitizer(t,
		sanitizer.WithKeys("email", "password"),
		sanitizer.WithReplacement(sanitizer.Transform(func(string) (string, error) { return "foo bar baz", nil })),
	)

	out := sanitize(t, s, mustParse(t, `{"email":"user@domain.xyz","password":"x","safe_value":"this is not sensitive"}`))

	assert.Equal(t, "this is not sensitive", text(t, out, "safe_value"))
	assert.Equal(t, "foo bar baz", text(t, out, "password"))
	assert.Equal(t, "foo bar baz", text(t, out, "email"))
}

func TestSanitize_ReplacementErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")

	transform := newSanitizer(t,
		sanitizer.WithKeys("password"),
		sanitizer.WithReplacement(sanitizer.Transform(func(string) (string, error) { return "", boom })),
	)
	_, err := transform.Sanitize(mustParse(t, `{"a":[{"password":"p"}]}`))
	assert.Same(t, boom, err)

	digest := newSanitizer(t,
		sanitizer.WithKeys("password"),
		sanitizer.WithReplacement(sanitizer.Digest(func([]byte) ([]byte, error) { return nil, boom })),
	)
	_, err = digest.Sanitize(mustParse(t, `{"password":"p"}`))
	assert.Same(t, boom, err)
}

func TestSanitize_CustomMessageAndStatic(t *testing.T) {
	s := newSanitizer(t,
		sanitizer.WithKeys("k"),
		sanitizer.WithPatterns("secret"),
		sanitizer.WithReplacement(sanitizer.Static("[REDACTED]")),
		sanitizer.WithMessage("[FILTERED]"),
	)

	out := sanitize(t, s, mustParse(t, `{"k":{"a":1},"m":"top secret"}`))

	assert.Equal(t, "[REDACTED]", text(t, out, "k"))
	assert.Equal(t, "[FILTERED]", text(t, out, "m"))
	assert.Equal(t, "[FILTERED]", s.Message())
	assert.Equal(t, []string{"k"}, s.Keys())
	assert.Equal(t, []string{"secret"}, s.Patterns())
}

func TestNew_InvalidPatternFails(t *testing.T) {
	_, err := sanitizer.New(sanitizer.WithPatterns("ok", "(unclosed", "[z-a]"))
	require.Error(t, err)

	var cfgErr *sanitizer.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "pattern", cfgErr.Field)
	assert.Contains(t, err.Error(), "(unclosed")
	assert.Contains(t, err.Error(), "[z-a]")

	assert.Panics(t, func() { sanitizer.Must(sanitizer.WithPatterns("(")) })
}

func TestHashByName_Unknown(t *testing.T) {
	_, err := sanitizer.HashByName("crc32", 0)
	var cfgErr *sanitizer.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "hash", cfgErr.Field)
	assert.Equal(t, "crc32", cfgErr.Value)
}

func TestSanitize_DefaultsLeaveDataAlone(t *testing.T) {
	s := newSanitizer(t)
	in := mustParse(t, `{"password":"p","msg":"Bearer t"}`)

	out := sanitize(t, s, in)

	assert.True(t, in.Equal(out))
}

func TestSanitize_ConcurrentUse(t *testing.T) {
	s := newSanitizer(t, sanitizer.WithKeys(sensitiveKeys...), sanitizer.WithPatterns(sensitivePatterns...))
	in := mustParse(t, `{"email":"a@b.c","list":["Bearer x","ok"],"nested":{"auth":"t","n":1}}`)
	want := sanitize(t, s, in)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := s.Sanitize(in)
			if err != nil {
				errs <- err
				return
			}
			if !out.Equal(want) {
				errs <- fmt.Errorf("unexpected output %s", out)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestSanitize_DeepNesting(t *testing.T) {
	s := newSanitizer(t, sanitizer.WithKeys("password"))
	v := sanitizer.Mapping(sanitizer.Entry{Key: "password", Value: sanitizer.Text("p")})
	for i := 0; i < 2000; i++ {
		v = sanitizer.Sequence(sanitizer.Mapping(sanitizer.Entry{Key: "n", Value: v}))
	}

	out := sanitize(t, s, v)

	for i := 0; i < 2000; i++ {
		next, ok := out.Index(0).Get("n")
		require.True(t, ok)
		out = next
	}
	assert.Equal(t, "********", text(t, out, "password"))
}

func TestSanitizeAny(t *testing.T) {
	s := newSanitizer(t, sanitizer.WithKeys("password"), sanitizer.WithPatterns("Bearer "))

	out, err := s.SanitizeAny(map[string]any{
		"user":     "bob",
		"password": "p",
		"tokens":   []string{"Bearer a", "b"},
		"n":        7,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"user":     "bob",
		"password": "********",
		"tokens":   []any{sanitizer.DefaultMessage, "b"},
		"n":        int64(7),
	}, out)
}

func hexOf(newHash func() hash.Hash, s string) string {
	h := newHash()
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

func TestHashByName_Spellings(t *testing.T) {
	for name, want := range map[string]string{
		"SHA-256":   "sha256",
		"sha3-256":  "sha3_256",
		"Shake-128": "shake_128",
		"sha512/x":  "",
	} {
		r, err := sanitizer.HashByName(name, 4)
		if want == "" {
			assert.Error(t, err, name)
			continue
		}
		require.NoError(t, err, name)
		ref, err := sanitizer.HashByName(want, 4)
		require.NoError(t, err)

		got, err := r.Apply(sanitizer.Text("v"))
		require.NoError(t, err)
		exp, err := ref.Apply(sanitizer.Text("v"))
		require.NoError(t, err)
		assert.Equal(t, exp.AsText(), got.AsText(), name)
	}
	assert.True(t, sanitizer.IsExtendable("SHAKE-256"))
	assert.False(t, sanitizer.IsExtendable("sha256"))
}
