package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ujian-go-api/internal/dto"
	"github.com/noah-isme/ujian-go-api/internal/handler"
	"github.com/noah-isme/ujian-go-api/internal/models"
	"github.com/noah-isme/ujian-go-api/internal/service"
)

type mockViolationService struct {
	outcome dto.ViolationOutcome
	err     error
}

func (m *mockViolationService) Report(context.Context, dto.ViolationReport) (dto.ViolationOutcome, error) {
	return m.outcome, m.err
}

func (m *mockViolationService) Unban(context.Context, string) error {
	return m.err
}

func (m *mockViolationService) ActiveBan(context.Context, string) (models.Ban, bool, error) {
	return models.Ban{}, false, m.err
}

type mockAppealService struct {
	appeals []dto.AppealResponse
	err     error
}

func (m *mockAppealService) Submit(context.Context, dto.AppealSubmission) (dto.AppealResponse, error) {
	return dto.AppealResponse{}, m.err
}

func (m *mockAppealService) ListOpen(context.Context, int) ([]dto.AppealResponse, error) {
	return m.appeals, m.err
}

func (m *mockAppealService) Resolve(context.Context, uint) error {
	return m.err
}

func newAdminTestApp(violations *mockViolationService, appeals *mockAppealService) *fiber.App {
	app := fiber.New()
	handler.NewAdminHandler(violations, appeals, zerolog.New(io.Discard)).Register(app.Group("/api/v1/admin"))
	return app
}

func TestAdminHandlerUnban(t *testing.T) {
	app := newAdminTestApp(&mockViolationService{}, &mockAppealService{})

	resp := postJSON(t, app, "/api/v1/admin/unban", dto.UnbanRequest{NIS: "1234"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAdminHandlerUnbanMissingNIS(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	violations := &mockViolationService{err: validate.Var("", "required")}
	app := newAdminTestApp(violations, &mockAppealService{})

	resp := postJSON(t, app, "/api/v1/admin/unban", fiber.Map{})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAdminHandlerAppeals(t *testing.T) {
	appeals := &mockAppealService{appeals: []dto.AppealResponse{{ID: 1, NIS: "1234", Text: "review me"}}}
	app := newAdminTestApp(&mockViolationService{}, appeals)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/appeals?limit=5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data []dto.AppealResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Len(t, response.Data, 1)

	resp = postJSON(t, app, "/api/v1/admin/appeals/resolve", dto.ResolveAppealRequest{ID: 1})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	appeals.err = service.ErrAppealNotFound
	resp = postJSON(t, app, "/api/v1/admin/appeals/resolve", dto.ResolveAppealRequest{ID: 99})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
