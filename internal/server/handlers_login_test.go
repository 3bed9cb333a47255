package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/chatrelay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postLogin(srv *Server, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestHandleLogin_SavesRecordWithExpiry(t *testing.T) {
	logins := newFakeLoginStore()
	srv := newTestServer(t, nil, logins)

	rec := postLogin(srv, `{"username":"alice","country":"de"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var record domain.LoginRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, "alice", record.Username)
	assert.Equal(t, "de", record.Country)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), record.Expires, time.Minute)
}

func TestHandleLogin_ReplacesPriorRecord(t *testing.T) {
	logins := newFakeLoginStore()
	srv := newTestServer(t, nil, logins)

	require.Equal(t, http.StatusOK, postLogin(srv, `{"username":"alice","country":"de"}`).Code)
	require.Equal(t, http.StatusOK, postLogin(srv, `{"username":"alice","country":"fr"}`).Code)

	require.Len(t, logins.records, 1)
	assert.Equal(t, "fr", logins.records["alice"].Country)
}

func TestHandleLogin_MissingUsername(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rec := postLogin(srv, `{"country":"de"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "username is required")
}

func TestHandleLogin_InvalidBody(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rec := postLogin(srv, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleLogin_StoreError(t *testing.T) {
	logins := newFakeLoginStore()
	logins.saveErr = fmt.Errorf("redis down")
	srv := newTestServer(t, nil, logins)

	rec := postLogin(srv, `{"username":"alice"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleGetLogin_FoundAndNotFound(t *testing.T) {
	logins := newFakeLoginStore()
	srv := newTestServer(t, nil, logins)

	require.Equal(t, http.StatusOK, postLogin(srv, `{"username":"alice","country":"de"}`).Code)

	req := httptest.NewRequest(http.MethodGet, "/login/alice", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var record domain.LoginRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, "alice", record.Username)

	req = httptest.NewRequest(http.MethodGet, "/login/nobody", nil)
	rec = httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
