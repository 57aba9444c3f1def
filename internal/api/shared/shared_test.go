package shared

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/deckpack/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	traced := SetTraceID(ctx)
	id := GetTraceID(traced)
	assert.Len(t, id, 32)
	_, err := hex.DecodeString(id)
	assert.NoError(t, err)
	assert.NotEqual(t, id, GetTraceID(SetTraceID(ctx)))

	bad := context.WithValue(ctx, TraceIDKey, 123)
	assert.Empty(t, GetTraceID(bad))
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"name":"Birds"}`},
		{name: "empty", body: "", wantErr: ErrEmptyBody.Error()},
		{name: "malformed", body: `{"name":`, wantErr: "unexpected EOF"},
		{name: "trailing data", body: `{"name":"a"} {"name":"b"}`, wantErr: "unexpected data"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var v struct {
				Name string `json:"name"`
			}
			err := DecodeJSON(req, &v)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Birds", v.Name)
		})
	}
}

type selfValidating struct{ ok bool }

func (s selfValidating) Validate() error {
	if !s.ok {
		return errors.New("nope")
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	type tagged struct {
		Name  string `validate:"required"`
		Count int    `validate:"min=1,max=50"`
	}

	assert.NoError(t, ValidateRequest(&tagged{Name: "x", Count: 1}))
	assert.Error(t, ValidateRequest(&tagged{Count: 1}))
	assert.Error(t, ValidateRequest(&tagged{Name: "x", Count: 51}))
	assert.NoError(t, ValidateRequest(selfValidating{ok: true}))
	assert.EqualError(t, ValidateRequest(selfValidating{}), "nope")
}

func TestRespondWithErrorAndLog(t *testing.T) {
	buf, log := logger.NewTestLogger(t)
	ctx := context.WithValue(context.Background(), TraceIDKey, "trace-1")
	ctx = logger.WithContext(ctx, log)
	req := httptest.NewRequest(http.MethodPost, "/api/export-package", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	RespondWithErrorAndLog(w, req, http.StatusInternalServerError, "Export failed",
		errors.New("decode data:image/png;base64,QUJDRA== failed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Export failed", resp.Error)
	assert.Equal(t, "trace-1", resp.TraceID)
	assert.NotContains(t, w.Body.String(), "decode")

	logger.AssertLogContains(t, buf, "API error response")
	logger.AssertLogContains(t, buf, "[IMAGE_DATA]")
	assert.NotContains(t, buf.String(), "QUJDRA==")
}

func TestRespondWithAttachment(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	w := httptest.NewRecorder()
	data := []byte("PK\x03\x04")

	RespondWithAttachment(w, req, "application/apkg", "export.apkg", data)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/apkg", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="export.apkg"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "4", w.Header().Get("Content-Length"))
	assert.True(t, bytes.Equal(data, w.Body.Bytes()))
}
