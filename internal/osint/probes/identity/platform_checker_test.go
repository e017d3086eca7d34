package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danieljcheung/trace/internal/osint/httpx"
	"github.com/danieljcheung/trace/internal/osint/probe"
)

func TestCheck_CheckStatus_FoundWhenLargeBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(strings.Repeat("x", 60000)))
	}))
	defer srv.Close()

	c := NewPlatformExistenceChecker(httpx.New(httpx.Policy{}))
	target := platformTarget{name: "Fake", urlFormat: srv.URL + "/%s", kind: checkStatus}

	assert.True(t, c.check(context.Background(), target, "alice"))
}

func TestCheck_CheckStatus_SoftNotFoundIndicatorRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Sorry, this user not found on our site."))
	}))
	defer srv.Close()

	c := NewPlatformExistenceChecker(httpx.New(httpx.Policy{}))
	target := platformTarget{name: "Fake", urlFormat: srv.URL + "/%s", kind: checkStatus}

	assert.False(t, c.check(context.Background(), target, "alice"))
}

func TestCheck_CheckStatus_SmallOKBodyWithoutIndicatorFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("welcome to my profile page"))
	}))
	defer srv.Close()

	c := NewPlatformExistenceChecker(httpx.New(httpx.Policy{}))
	target := platformTarget{name: "Fake", urlFormat: srv.URL + "/%s", kind: checkStatus}

	assert.True(t, c.check(context.Background(), target, "alice"))
}

func TestCheck_CheckStatus_NonOKOutcomeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewPlatformExistenceChecker(httpx.New(httpx.Policy{}))
	target := platformTarget{name: "Fake", urlFormat: srv.URL + "/%s", kind: checkStatus}

	assert.False(t, c.check(context.Background(), target, "alice"))
}

func TestCheck_CheckContent_NeedleMatchFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("user karma: 42"))
	}))
	defer srv.Close()

	c := NewPlatformExistenceChecker(httpx.New(httpx.Policy{}))
	target := platformTarget{name: "Fake", urlFormat: srv.URL + "/%s", kind: checkContent, needle: "karma"}

	assert.True(t, c.check(context.Background(), target, "alice"))
}

func TestCheck_CheckContent_NeedleMissingRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("no such user"))
	}))
	defer srv.Close()

	c := NewPlatformExistenceChecker(httpx.New(httpx.Policy{}))
	target := platformTarget{name: "Fake", urlFormat: srv.URL + "/%s", kind: checkContent, needle: "karma"}

	assert.False(t, c.check(context.Background(), target, "alice"))
}

func TestRun_IgnoresNonUsernameSeed(t *testing.T) {
	c := NewPlatformExistenceChecker(httpx.New(httpx.Policy{}))
	ch := c.Run(context.Background(), probe.EmailSeed("person@example.com"), 2, "parent-1")

	var count int
	for range ch {
		count++
	}
	assert.Zero(t, count)
}

func TestRun_IgnoresShortUsername(t *testing.T) {
	c := NewPlatformExistenceChecker(httpx.New(httpx.Policy{}))
	ch := c.Run(context.Background(), probe.UsernameSeed("ab"), 2, "parent-1")

	var count int
	for range ch {
		count++
	}
	assert.Zero(t, count)
}
