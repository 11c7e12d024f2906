package v1

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/PascmdeoMvd/Plataforma/internal/service/export"
	"github.com/PascmdeoMvd/Plataforma/internal/service/session"
	"github.com/PascmdeoMvd/Plataforma/internal/store"
)

const inscripciones = `nombre_completo,departamento,ciudad,interes_sumarse_como,área_colaboración,disponibilidad_horaria,modalidad_participación,comentarios
Ana Pérez,montevideo,centro,Voluntaria,Legal,Mañanas,Presencial,
Bruno Díaz,canelones,pando,Referente,Comunicación,Tardes,Virtual,
Carla Gómez,montevideo,pocitos,Voluntaria,Otra,Tardes,Mixta,
`

type testEnv struct {
	router  *gin.Engine
	session *session.Session
	store   *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.New(filepath.Join(t.TempDir(), "panel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	sess := session.New(st, session.Options{
		ThresholdDays: 14,
		Now:           func() time.Time { return time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC) },
	})

	r := gin.New()
	h := NewHandler(sess, Options{Uploads: st, MaxUploadBytes: 1 << 20, Backend: "sqlite"})
	h.RegisterRoutes(r.Group("/api"))

	return &testEnv{router: r, session: sess, store: st}
}

func (e *testEnv) do(t *testing.T, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(t *testing.T, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}
	return e.do(t, method, path, body, "application/json")
}

func multipartBody(t *testing.T, field, filename string, content []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, "file", filename, []byte(content))
	return e.do(t, http.MethodPost, "/api/dataset", body, ct)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func TestStatusBeforeUpload(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/status", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp StatusResponse
	decode(t, w, &resp)
	assert.False(t, resp.Initialized)
	assert.Nil(t, resp.Dataset)
	assert.Equal(t, 14, resp.ThresholdDays)
	assert.Equal(t, "ok", resp.AlertStatus)
	assert.Equal(t, "sqlite", resp.Backend)
}

func TestUploadDataset(t *testing.T) {
	env := newTestEnv(t)

	w := env.upload(t, "inscripciones.csv", inscripciones)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp DatasetResponse
	decode(t, w, &resp)
	assert.Equal(t, 3, resp.Rows)
	require.NotNil(t, resp.Dataset)
	assert.Equal(t, "csv", resp.Dataset.Format)

	w = env.do(t, http.MethodGet, "/api/facets", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var facets struct {
		Departments []string `json:"departments"`
		Interests   []string `json:"interests"`
	}
	decode(t, w, &facets)
	assert.Equal(t, []string{"Canelones", "Montevideo"}, facets.Departments)
	assert.Equal(t, []string{"Referente", "Voluntaria"}, facets.Interests)

	w = env.do(t, http.MethodGet, "/api/dataset/history", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Items []store.ImportLog `json:"items"`
	}
	decode(t, w, &history)
	require.Len(t, history.Items, 1)
	assert.Equal(t, "completed", history.Items[0].Status)
	assert.Equal(t, 3, history.Items[0].ImportedRows)
}

func TestUploadDatasetMissingColumns(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.upload(t, "inscripciones.csv", inscripciones).Code)

	w := env.upload(t, "roto.csv", "nombre_completo,departamento\nAna,Montevideo\n")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ciudad")

	// 原数据集保留
	ds, ok := env.session.Dataset()
	require.True(t, ok)
	assert.Equal(t, "inscripciones.csv", ds.FileName)

	logs, err := env.store.ListImportLogs(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "failed", logs[0].Status)
}

func TestUploadDatasetWithoutFile(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/dataset", []byte("{}"), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadDatasetTooLarge(t *testing.T) {
	env := newTestEnv(t)

	big := inscripciones + strings.Repeat("x", 2<<20)
	w := env.upload(t, "grande.csv", big)
	assert.GreaterOrEqual(t, w.Code, http.StatusBadRequest)
	_, ok := env.session.Dataset()
	assert.False(t, ok)
}

func TestQueryPeopleAndAssign(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.upload(t, "inscripciones.csv", inscripciones).Code)

	w := env.doJSON(t, http.MethodPut, "/api/assignments/"+url.PathEscape("Carla Gómez"), AssignmentRequest{Sector: "E"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var ch session.Change
	decode(t, w, &ch)
	assert.True(t, ch.Changed)
	assert.False(t, ch.Existed)
	assert.Equal(t, "E", ch.After)

	w = env.doJSON(t, http.MethodPost, "/api/people/query", map[string]interface{}{
		"departments": []string{"Montevideo"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var people PeopleResponse
	decode(t, w, &people)
	require.Equal(t, 2, people.Total)
	assert.Equal(t, "Ana Pérez", people.Rows[0].FullName)
	assert.True(t, people.Rows[0].Suggested)
	assert.Equal(t, "Carla Gómez", people.Rows[1].FullName)
	assert.Equal(t, "E", string(people.Rows[1].Sector))
	assert.False(t, people.Rows[1].Suggested)

	// 空选择：无结果
	w = env.doJSON(t, http.MethodPost, "/api/people/query", map[string]interface{}{
		"departments": []string{},
	})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &people)
	assert.Equal(t, 0, people.Total)
}

func TestSetAssignmentUnknownSector(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodPut, "/api/assignments/Ana", AssignmentRequest{Sector: "Z"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, env.session.State().Assignments.Len())
}

func TestListAssignmentsIncludesEmptySectors(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.doJSON(t, http.MethodPut, "/api/assignments/Ana", AssignmentRequest{Sector: "A"}).Code)

	w := env.do(t, http.MethodGet, "/api/assignments", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Groups []struct {
			Sector  struct{ Code string } `json:"sector"`
			Members []string              `json:"members"`
		} `json:"groups"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Groups, 6)
	assert.Equal(t, []string{"Ana"}, resp.Groups[0].Members)
	assert.Empty(t, resp.Groups[1].Members)
}

func TestGridEdits(t *testing.T) {
	env := newTestEnv(t)

	sector := "B"
	date := "2024-03-01"
	bad := "Q"
	w := env.doJSON(t, http.MethodPost, "/api/grid", GridRequest{Edits: []session.GridEdit{
		{PersonID: "Ana", Sector: &sector, LastContact: &date},
		{PersonID: "Bruno", Sector: &bad},
	}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, env.session.State().Assignments.Len())

	w = env.doJSON(t, http.MethodPost, "/api/grid", GridRequest{Edits: []session.GridEdit{
		{PersonID: "Ana", Sector: &sector, LastContact: &date},
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ps := env.session.State()
	got, _ := ps.Contacts.Get("Ana")
	assert.Equal(t, "2024-03-01", got)
}

func TestContactsAndAlerts(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.doJSON(t, http.MethodPut, "/api/assignments/Ana", AssignmentRequest{Sector: "A"}).Code)
	require.Equal(t, http.StatusOK, env.doJSON(t, http.MethodPut, "/api/assignments/Beto", AssignmentRequest{Sector: "B"}).Code)

	w := env.do(t, http.MethodGet, "/api/contacts/candidates", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var candidates struct {
		Names []string `json:"names"`
	}
	decode(t, w, &candidates)
	assert.Equal(t, []string{"Ana", "Beto"}, candidates.Names)

	w = env.doJSON(t, http.MethodPut, "/api/contacts/Beto", ContactRequest{Date: "2023-01-01"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/alerts?today=2023-02-01", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var alerts AlertsResponse
	decode(t, w, &alerts)
	assert.Equal(t, "attention", alerts.Status)
	require.Len(t, alerts.Missing, 1)
	assert.Equal(t, "Ana", alerts.Missing[0].PersonID)
	require.Len(t, alerts.Overdue, 1)
	assert.Equal(t, 31, alerts.Overdue[0].Days)

	w = env.do(t, http.MethodGet, "/api/alerts?today=ayer", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/export/alerts?today=2023-02-01", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "alertas_comunicacion.csv")
	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"nombre_completo", "sector", "tipo_alerta", "dias"},
		{"Ana", "A", "Sin fecha", ""},
		{"Beto", "B", "31 días sin contacto", "31"},
	}, records)
}

func TestCharts(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.upload(t, "inscripciones.csv", inscripciones).Code)
	require.Equal(t, http.StatusOK, env.doJSON(t, http.MethodPut, "/api/assignments/"+url.PathEscape("Ana Pérez"), AssignmentRequest{Sector: "C"}).Code)

	w := env.do(t, http.MethodGet, "/api/charts?departments=Canelones", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var charts struct {
		BySector     []struct{ Count int } `json:"bySector"`
		ByDepartment map[string]int        `json:"byDepartment"`
	}
	decode(t, w, &charts)
	assert.Equal(t, map[string]int{"Canelones": 1}, charts.ByDepartment)
	require.Len(t, charts.BySector, 6)
	assert.Equal(t, 0, charts.BySector[2].Count)

	w = env.do(t, http.MethodGet, "/api/charts", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &charts)
	assert.Equal(t, 1, charts.BySector[2].Count)
}

func TestChartsAndWorkbookEmptySelection(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.upload(t, "inscripciones.csv", inscripciones).Code)
	require.Equal(t, http.StatusOK, env.doJSON(t, http.MethodPut, "/api/assignments/"+url.PathEscape("Ana Pérez"), AssignmentRequest{Sector: "C"}).Code)

	w := env.do(t, http.MethodGet, "/api/charts?departments_none=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var charts struct {
		BySector     []struct{ Count int } `json:"bySector"`
		ByDepartment map[string]int        `json:"byDepartment"`
	}
	decode(t, w, &charts)
	require.Len(t, charts.BySector, 6)
	for i, c := range charts.BySector {
		assert.Equal(t, 0, c.Count, "sector %d", i)
	}
	assert.Empty(t, charts.ByDepartment)

	// 显式给出的值优先于 _none
	w = env.do(t, http.MethodGet, "/api/charts?interests_none=0&departments=Canelones", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &charts)
	assert.Equal(t, map[string]int{"Canelones": 1}, charts.ByDepartment)

	w = env.do(t, http.MethodGet, "/api/export/workbook?interests_none=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetPeople)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSearchPeople(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.upload(t, "inscripciones.csv", inscripciones).Code)

	w := env.do(t, http.MethodGet, "/api/people/search?q=carla", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Names []string `json:"names"`
	}
	decode(t, w, &resp)
	assert.Equal(t, []string{"Carla Gómez"}, resp.Names)

	w = env.do(t, http.MethodGet, "/api/people/search?limit=-1", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportPeopleRequiresDataset(t *testing.T) {
	env := newTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/export/people", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.Equal(t, http.StatusOK, env.upload(t, "inscripciones.csv", inscripciones).Code)
	w = env.doJSON(t, http.MethodPost, "/api/export/people", map[string]interface{}{
		"interests": []string{"Referente"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "personas_filtradas.csv")

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Bruno Díaz", records[1][0])
	assert.Equal(t, "B", records[1][8])
}

func TestExportAssignmentsAndWorkbook(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.upload(t, "inscripciones.csv", inscripciones).Code)
	require.Equal(t, http.StatusOK, env.doJSON(t, http.MethodPut, "/api/assignments/"+url.PathEscape("Ana Pérez"), AssignmentRequest{Sector: "C"}).Code)

	w := env.do(t, http.MethodGet, "/api/export/assignments", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nombre_completo,sector\nAna Pérez,C\n", w.Body.String())

	w = env.do(t, http.MethodGet, "/api/export/workbook", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypeXLSX, w.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Personas", "Asignaciones", "Alertas", "Métricas"}, f.GetSheetList())
}

func TestStateDownloadImportAndSave(t *testing.T) {
	env := newTestEnv(t)

	doc := `{"asignaciones":{"Ana":"A"},"ultima_comunicacion":{"Ana":"2024-03-01"}}`
	w := env.do(t, http.MethodPost, "/api/state", []byte(doc), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 非法文档：400，状态不变
	w = env.do(t, http.MethodPost, "/api/state", []byte(`{"asignaciones": [1]}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, env.session.State().Assignments.Len())

	// multipart 上传
	body, ct := multipartBody(t, "file", "progreso_panel.json", []byte(`{"asignaciones":{"Ana":"B","Luis":"F"}}`))
	w = env.do(t, http.MethodPost, "/api/state", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2, env.session.State().Assignments.Len())
	assert.Equal(t, 0, env.session.State().Contacts.Len())

	w = env.do(t, http.MethodGet, "/api/state", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "progreso_panel.json")
	assert.JSONEq(t, `{"asignaciones":{"Ana":"B","Luis":"F"},"ultima_comunicacion":{}}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/state/save", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	saved, err := env.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Ana": "B", "Luis": "F"}, saved.Assignments.Map())
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusBadRequest, statusFor(session.ErrUnknownSector))
	assert.Equal(t, http.StatusBadRequest, statusFor(session.ErrNoDataset))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
