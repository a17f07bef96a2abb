package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/teaminbox/internal/model"
)

func TestList_Envelope(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/notifications", r.URL.Path)
		_, _ = w.Write([]byte(`{"notifications":[{
			"id":"n1","title":"Team Invitation","message":"You have been invited",
			"type":"INVITATION","status":"UNREAD","created_at":"2026-10-01T10:00:00Z",
			"related_id":"inv-42"}]}`))
	}))
	defer ts.Close()

	got, err := NewClient(ts.URL, "tok").List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "n1", got[0].ID)
	assert.Equal(t, model.NotificationTypeInvitation, got[0].Type)
	assert.Equal(t, model.StatusUnread, got[0].Status)
	assert.Equal(t, "inv-42", got[0].RelatedID)
	assert.Equal(t, 2026, got[0].CreatedAt.Year())
}

func TestList_BareArray(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"a"},{"id":"b"}]`))
	}))
	defer ts.Close()

	got, err := NewClient(ts.URL, "").List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[1].ID)
}

func TestMarkRead(t *testing.T) {
	var method, path string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	require.NoError(t, NewClient(ts.URL, "").MarkRead(context.Background(), "n1"))
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/api/v1/notifications/n1/read", path)
}

func TestList_ErrorIsWrapped(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL, "").List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing notifications")
}
