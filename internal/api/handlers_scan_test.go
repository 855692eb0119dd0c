// handlers_scan_test.go - Tests for the multipart scan endpoint
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rntrp/reefspect/internal/audit"
	"github.com/rntrp/reefspect/internal/models"
	"github.com/rntrp/reefspect/internal/scan"
	"github.com/rntrp/reefspect/internal/staging"
	"github.com/rntrp/reefspect/internal/testutil"
)

// fakeJournal records calls to Record and serves canned rows.
type fakeJournal struct {
	records   []models.FileResult
	rows      []audit.Record
	recordErr error
}

func (j *fakeJournal) Record(_ context.Context, results []models.FileResult) error {
	if j.recordErr != nil {
		return j.recordErr
	}
	j.records = append(j.records, results...)
	return nil
}

func (j *fakeJournal) Recent(_ context.Context, limit int) ([]audit.Record, error) {
	if limit > len(j.rows) {
		limit = len(j.rows)
	}
	return j.rows[:limit], nil
}

type uploadFile struct {
	name string
	data []byte
}

func multipartBody(t *testing.T, files []uploadFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		dst, err := w.CreateFormFile("file", f.name)
		require.NoError(t, err)
		_, err = dst.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

type scanFixture struct {
	handler    ScanHandler
	engine     *testutil.MockEngine
	journal    *fakeJournal
	stagingDir string
}

func newScanFixture(t *testing.T) *scanFixture {
	t.Helper()
	dir := t.TempDir()
	store, err := staging.NewStore(dir)
	require.NoError(t, err)
	eng := testutil.NewMockEngine()
	journal := &fakeJournal{}
	return &scanFixture{
		handler:    NewScanHandler(scan.NewPipeline(store, eng, nil), journal, nil),
		engine:     eng,
		journal:    journal,
		stagingDir: dir,
	}
}

func (f *scanFixture) do(t *testing.T, body io.Reader, contentType string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/scan", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	return rec, f.handler.HandleScan(e.NewContext(req, rec))
}

func decodeReport(t *testing.T, rec *httptest.ResponseRecorder) models.ScanReport {
	t.Helper()
	var report models.ScanReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	return report
}

func assertStagingEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging dir must be empty after the request")
}

func TestHandleScan_EICARUpload(t *testing.T) {
	f := newScanFixture(t)
	body, ct := multipartBody(t, []uploadFile{
		{name: "eicar.com", data: []byte(testutil.EICARTestString)},
	})

	rec, err := f.do(t, body, ct)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	report := decodeReport(t, rec)
	assert.Equal(t, "ClamAV 1.4.3", report.AvVersion)
	assert.Equal(t, uint32(27781), report.DBVersion)
	assert.Equal(t, uint32(8723456), report.DBSignatureCount)
	assert.Equal(t, "2026-08-20T08:30:00.000Z", report.DBDate)

	require.Len(t, report.Results, 1)
	r := report.Results[0]
	require.NotNil(t, r.Name)
	assert.Equal(t, "eicar.com", *r.Name)
	assert.Equal(t, int64(68), r.Size)
	assert.Equal(t, "6851cf3c", r.CRC32)
	assert.Equal(t, "44d88612fea8a8f36de82e1278abb02f", r.MD5)
	assert.Equal(t, "275a021bbfb6489e54d471899f7db9d1663fc695ec2fe2a2c4538aabf651fd0f", r.SHA256)
	assert.Nil(t, r.ContentType, "plain text has no detectable content type")
	assert.Equal(t, models.ResultVirus, r.Result)
	require.NotNil(t, r.Signature)
	assert.Equal(t, testutil.EICARSignature, *r.Signature)

	_, perr := time.Parse(models.ScanTimeLayout, r.DateScanned)
	assert.NoError(t, perr, "dateScanned must match the report layout")

	assertStagingEmpty(t, f.stagingDir)
}

func TestHandleScan_ZippedEICAR(t *testing.T) {
	f := newScanFixture(t)
	body, ct := multipartBody(t, []uploadFile{
		{name: "eicar.com.zip", data: testutil.EICARZip()},
	})

	rec, err := f.do(t, body, ct)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	report := decodeReport(t, rec)
	require.Len(t, report.Results, 1)
	r := report.Results[0]
	assert.Equal(t, int64(184), r.Size)
	assert.Equal(t, "31db20d1", r.CRC32)
	assert.Equal(t, "6ce6f415d8475545be5ba114f208b0ff", r.MD5)
	assert.Equal(t, "2546dcffc5ad854d4ddc64fbf056871cd5a00f2471cb7a5bfd4ac23b6e9eedad", r.SHA256)
	require.NotNil(t, r.ContentType)
	assert.Equal(t, "application/zip", *r.ContentType)
	assert.Equal(t, models.ResultVirus, r.Result)
}

func TestHandleScan_CleanPDF(t *testing.T) {
	f := newScanFixture(t)
	body, ct := multipartBody(t, []uploadFile{
		{name: "min.pdf", data: testutil.MinimalPDF()},
	})

	rec, err := f.do(t, body, ct)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	report := decodeReport(t, rec)
	require.Len(t, report.Results, 1)
	r := report.Results[0]
	assert.Equal(t, int64(130), r.Size)
	assert.Equal(t, "d703e9d5", r.CRC32)
	require.NotNil(t, r.ContentType)
	assert.Equal(t, "application/pdf", *r.ContentType)
	assert.Equal(t, models.ResultClean, r.Result)
	assert.Nil(t, r.Signature, "clean results carry no signature")
}

func TestHandleScan_MultipleFilesInOrder(t *testing.T) {
	f := newScanFixture(t)
	body, ct := multipartBody(t, []uploadFile{
		{name: "one.txt", data: []byte("first")},
		{name: "two.txt", data: []byte("second")},
		{name: "three.txt", data: []byte("third")},
	})

	rec, err := f.do(t, body, ct)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	report := decodeReport(t, rec)
	require.Len(t, report.Results, 3)
	for i, want := range []string{"one.txt", "two.txt", "three.txt"} {
		require.NotNil(t, report.Results[i].Name)
		assert.Equal(t, want, *report.Results[i].Name)
		assert.Equal(t, models.ResultClean, report.Results[i].Result)
	}
}

func TestHandleScan_EmptyForm(t *testing.T) {
	f := newScanFixture(t)
	body, ct := multipartBody(t, nil)

	rec, err := f.do(t, body, ct)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The wire body must carry an empty array, not null.
	assert.Contains(t, rec.Body.String(), `"results":[]`)
	report := decodeReport(t, rec)
	assert.Equal(t, "ClamAV 1.4.3", report.AvVersion)
	assert.Empty(t, f.journal.records, "nothing to journal for an empty form")
}

func TestHandleScan_NonMultipartBodyIsBadRequest(t *testing.T) {
	f := newScanFixture(t)

	_, err := f.do(t, strings.NewReader(`{"not":"multipart"}`), echo.MIMEApplicationJSON)
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestHandleScan_MalformedMultipartIsBadRequest(t *testing.T) {
	f := newScanFixture(t)

	body := strings.NewReader("--deadbeef\r\ngarbage without headers")
	_, err := f.do(t, body, `multipart/form-data; boundary=deadbeef`)
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assertStagingEmpty(t, f.stagingDir)
}

func TestHandleScan_EngineFailureIsInternal(t *testing.T) {
	f := newScanFixture(t)
	f.engine.DropResult = true
	body, ct := multipartBody(t, []uploadFile{
		{name: "a.txt", data: []byte("payload")},
	})

	_, err := f.do(t, body, ct)
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Empty(t, f.journal.records, "failed requests are never journaled")
	assertStagingEmpty(t, f.stagingDir)
}

func TestHandleScan_ResultsAreJournaled(t *testing.T) {
	f := newScanFixture(t)
	body, ct := multipartBody(t, []uploadFile{
		{name: "a.txt", data: []byte("alpha")},
		{name: "eicar.com", data: []byte(testutil.EICARTestString)},
	})

	rec, err := f.do(t, body, ct)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, f.journal.records, 2)
	assert.Equal(t, models.ResultClean, f.journal.records[0].Result)
	assert.Equal(t, models.ResultVirus, f.journal.records[1].Result)
}

func TestHandleScan_JournalFailureDoesNotFailRequest(t *testing.T) {
	f := newScanFixture(t)
	f.journal.recordErr = errors.New("journal unavailable")
	body, ct := multipartBody(t, []uploadFile{
		{name: "a.txt", data: []byte("alpha")},
	})

	rec, err := f.do(t, body, ct)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	report := decodeReport(t, rec)
	require.Len(t, report.Results, 1)
}
