package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristalexdent/clinicadmin/internal/api"
)

func fakeServices(t *testing.T, body any) *api.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/services", func(c *gin.Context) {
		c.JSON(http.StatusOK, body)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.APIURL = srv.URL
	client, err := api.New(cfg)
	require.NoError(t, err)
	return client
}

func TestListRecords(t *testing.T) {
	t.Cleanup(func() { listFlags.sort, listFlags.desc, listFlags.page = "", false, 1 })

	client := fakeServices(t, gin.H{"data": []gin.H{
		{"_id": "a1", "titleKey": "Cleaning", "price": "100"},
		{"_id": "b2", "titleKey": "Whitening", "price": "250"},
		{"_id": "c3", "titleKey": "Implant", "price": "900"},
	}})
	cfg := testConfig()
	cfg.PageSize = 2
	res := lookup(t, "service")

	listFlags.sort, listFlags.desc, listFlags.page = "titleKey", true, 1
	var out bytes.Buffer
	require.NoError(t, listRecords(context.Background(), &out, client, cfg, res))
	text := out.String()
	assert.Less(t, strings.Index(text, "Whitening"), strings.Index(text, "Implant"))
	assert.NotContains(t, text, "Cleaning")
	assert.Contains(t, text, "Page 1 of 2 (3 services)")

	listFlags.page = 5
	out.Reset()
	require.NoError(t, listRecords(context.Background(), &out, client, cfg, res))
	assert.Contains(t, out.String(), "Cleaning")
	assert.Contains(t, out.String(), "Page 2 of 2 (3 services)")
}

func TestListRecords_Empty(t *testing.T) {
	client := fakeServices(t, []gin.H{})
	var out bytes.Buffer
	require.NoError(t, listRecords(context.Background(), &out, client, testConfig(), lookup(t, "service")))
	assert.Equal(t, "No services yet.\n", out.String())
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"y", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var out bytes.Buffer
			ok, err := confirm(strings.NewReader(tt.in), &out, "Delete service a1?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, "Delete service a1? [y/N] ", out.String())
		})
	}
}
