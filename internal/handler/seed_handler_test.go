package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ujian-go-api/internal/dto"
	"github.com/noah-isme/ujian-go-api/internal/handler"
	"github.com/noah-isme/ujian-go-api/internal/service"
)

type mockSeedService struct {
	affected  int64
	lastToken string
	err       error
}

func (m *mockSeedService) SeedStudents(_ context.Context, token string, _ dto.SeedStudentsRequest) (int64, error) {
	m.lastToken = token
	return m.affected, m.err
}

func (m *mockSeedService) SeedForms(_ context.Context, token string, _ dto.SeedFormsRequest) (int64, error) {
	m.lastToken = token
	return m.affected, m.err
}

func newSeedTestApp(svc *mockSeedService) *fiber.App {
	app := fiber.New()
	handler.NewSeedHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1/seed"))
	return app
}

func seedRequest(t *testing.T, app *fiber.App, path, token string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Seed-Token", token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestSeedHandlerForwardsHeaderToken(t *testing.T) {
	svc := &mockSeedService{affected: 2}
	app := newSeedTestApp(svc)

	payload := dto.SeedStudentsRequest{Students: []dto.StudentSeed{{NIS: "1234", Name: "Alya", Grade: "12", Class: "A"}}}
	resp := seedRequest(t, app, "/api/v1/seed/students", "seed-secret", payload)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "seed-secret", svc.lastToken)

	var response struct {
		Data dto.SeedResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, int64(2), response.Data.Affected)
}

func TestSeedHandlerGuardStatuses(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{name: "disabled", err: service.ErrSeedDisabled, statusCode: fiber.StatusForbidden},
		{name: "bad token", err: service.ErrSeedUnauthorized, statusCode: fiber.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newSeedTestApp(&mockSeedService{err: tc.err})
			payload := dto.SeedFormsRequest{Grade: "12", Subject: "math", Forms: []dto.FormSeed{{Payload: json.RawMessage(`{}`)}}}
			resp := seedRequest(t, app, "/api/v1/seed/forms", "whatever", payload)
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}
