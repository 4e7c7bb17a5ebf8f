package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	j "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/skema"
	g "github.com/reoring/skema/dsl"
	"github.com/reoring/skema/middleware"
)

type createUser struct {
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
}

func router() http.Handler { return routerWith(skema.ParseOpt{}) }

func routerWith(opt skema.ParseOpt) http.Handler {
	s := g.As[createUser](g.Object(
		g.F("name", g.String().Min(1)),
		g.F("admin", g.Bool().Default(false)),
		g.F("meta", g.Any().Optional()),
	).Strict())

	r := chi.NewRouter()
	r.With(middleware.ValidateJSON[createUser](s, opt)).Post("/users", func(w http.ResponseWriter, r *http.Request) {
		dm, ok := middleware.DecodedFromContext[createUser](r.Context())
		if !ok {
			http.Error(w, "missing decoded body", http.StatusInternalServerError)
			return
		}
		middleware.WriteJSON(w, http.StatusCreated, map[string]any{
			"name":           dm.Value.Name,
			"admin":          dm.Value.Admin,
			"adminDefaulted": dm.Presence.Has("/admin", skema.PresenceDefaultApplied),
		})
	})
	return r
}

func do(t *testing.T, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	return doWith(t, router(), body)
}

func doWith(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	require.NoError(t, j.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestValidateJSON_Accepts(t *testing.T) {
	rec, out := do(t, `{"name":"alice"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, map[string]any{"name": "alice", "admin": false, "adminDefaulted": true}, out)
}

func TestValidateJSON_RejectsIssues(t *testing.T) {
	rec, out := do(t, `{"name":"","role":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	issues, ok := out["issues"].([]any)
	require.True(t, ok, "%v", out)
	require.Len(t, issues, 2)
	first := issues[0].(map[string]any)
	assert.Equal(t, "/name", first["path"])
	assert.Equal(t, skema.CodeRefinementFailed, first["code"])
	second := issues[1].(map[string]any)
	assert.Equal(t, "/role", second["path"])
	assert.Equal(t, skema.CodeUnrecognizedKey, second["code"])
}

func TestValidateJSON_RejectsDuplicateKeys(t *testing.T) {
	rec, out := do(t, `{"name":"a","name":"b"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["error"], "duplicate key")
	assert.NotContains(t, out, "issues")
}

func TestValidateJSON_RejectsMalformed(t *testing.T) {
	rec, out := do(t, `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["error"], "skema: decode input")
}

func TestValidateJSON_KeepsCallerOptions(t *testing.T) {
	deep := `{"name":"a","meta":{"b":{"c":{"d":1}}}}`

	rec, out := doWith(t, routerWith(skema.ParseOpt{MaxDepth: 2}), deep)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["error"], "max depth exceeded")

	rec, _ = do(t, deep)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Defaults still fill the fields left at zero.
	rec, out = doWith(t, routerWith(skema.ParseOpt{MaxDepth: 2}), `{"name":"a","name":"b"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, out["error"], "duplicate key")

	rec, out = doWith(t, routerWith(skema.ParseOpt{FailFast: true}), `{"name":"","role":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, out["issues"], 1)
}

func TestValidateJSON_ByteLimit(t *testing.T) {
	body := `{"name":"` + strings.Repeat("x", 64) + `"}`
	rec, out := doWith(t, routerWith(skema.ParseOpt{MaxBytes: 16}), body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, out["error"])

	rec, _ = doWith(t, routerWith(skema.ParseOpt{MaxBytes: -1}), body)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestErrorPayload(t *testing.T) {
	p := middleware.ErrorPayload(skema.Issues{
		skema.Path{"items", 0, "sku"}.Issue(skema.CodeTypeMismatch, "expected string, received number"),
	})
	require.Len(t, p.Issues, 1)
	assert.Equal(t, "/items/0/sku", p.Issues[0].Path)
	assert.Empty(t, p.Error)
}
