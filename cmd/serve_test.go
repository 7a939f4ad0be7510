//go:build !integration

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/dataset"
)

func TestRouter_HealthEndpoint(t *testing.T) {
	r := newRouter(nil, "")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	err := json.Unmarshal(rr.Body.Bytes(), &body)
	require.NoError(t, err)
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_Score(t *testing.T) {
	r := newRouter(nil, "")

	payload := map[string]any{
		"filters": map[string]any{
			"uf":            []string{"SC"},
			"nome_fantasia": []string{"PADARIA"},
		},
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/v1/score", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]int
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, 15, resp["score"])
}

func TestRouter_Score_UnknownFilter(t *testing.T) {
	r := newRouter(nil, "")

	body, _ := json.Marshal(map[string]any{
		"filters": map[string]any{"cidade": []string{"Chapeco"}},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/score", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown filter")
}

func TestRouter_Score_InvalidJSON(t *testing.T) {
	r := newRouter(nil, "")

	req := httptest.NewRequest(http.MethodPost, "/v1/score", bytes.NewReader([]byte("not json")))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")
}

func TestRouter_Compile(t *testing.T) {
	r := newRouter(nil, "visao_empresa_agrupada_base")

	payload := map[string]any{
		"filters": map[string]any{"uf": []string{"SC"}},
		"exclude": []string{"11222333000181"},
		"limit":   50,
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/v1/compile", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		SQL    string         `json:"sql"`
		Params map[string]any `json:"params"`
		Score  int            `json:"score"`
	}
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)

	assert.Contains(t, resp.SQL, "FROM visao_empresa_agrupada_base")
	assert.Contains(t, resp.SQL, "situacao_cadastral = 'ATIVA'")
	assert.Contains(t, resp.SQL, "@uf_0")
	assert.Contains(t, resp.SQL, "LIMIT 50")
	assert.Equal(t, "SC", resp.Params["uf_0"])
	assert.Equal(t, "11222333000181", resp.Params["excl_0"])
	assert.Equal(t, 5, resp.Score)
}

func TestRouter_Options_NoDataset(t *testing.T) {
	r := newRouter(nil, "")

	req := httptest.NewRequest(http.MethodGet, "/v1/options/uf", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "no option dataset loaded")
}

func TestRouter_Options_Categorical(t *testing.T) {
	d := dataset.New("uf")
	d.AppendStrings("SC")
	d.AppendStrings("SC")
	d.AppendStrings("SP")
	r := newRouter(d, "")

	req := httptest.NewRequest(http.MethodGet, "/v1/options/uf?limit=10", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Field  string   `json:"field"`
		Values []string `json:"values"`
	}
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "uf", resp.Field)
	assert.Equal(t, []string{"SC", "SP"}, resp.Values)
}

func TestRouter_Options_UnknownField(t *testing.T) {
	d := dataset.New("uf")
	r := newRouter(d, "")

	req := httptest.NewRequest(http.MethodGet, "/v1/options/cidade", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown option field")
}

func TestRouter_Options_PartnerFields(t *testing.T) {
	d := dataset.New("qualificacoes", "faixas_etarias", "nomes_socios")
	d.AppendStrings("Sócio-Administrador", "31 a 40 anos", "JOAO DA SILVA")
	d.AppendStrings("Sócio-Administrador", "41 a 50 anos", "MARIA SILVA")
	r := newRouter(d, "")

	for field, want := range map[string]string{
		"qualificacao_socio":      "Sócio-Administrador",
		"faixa_etaria_socio":      "31 a 40 anos",
		"nome_socio_razao_social": "silva",
	} {
		req := httptest.NewRequest(http.MethodGet, "/v1/options/"+field, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, field)

		var resp struct {
			Values []string `json:"values"`
		}
		err := json.Unmarshal(rr.Body.Bytes(), &resp)
		require.NoError(t, err, field)
		assert.Contains(t, resp.Values, want, field)
	}
}
