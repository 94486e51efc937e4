package activity

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

func TestActivityHandlersCreate(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO activities`).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	app := fiber.New()
	RegisterRoutes(app.Group("/activities"), NewService(mock))

	body, _ := json.Marshal(CreateRequest{UserID: "user-1", FinalizedActivity: sampleFinalized()})
	req := httptest.NewRequest(http.MethodPost, "/activities", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: %v", err)
	}
}

func TestActivityHandlersCreateBadRequest(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/activities"), NewService(nil))

	for _, body := range []string{"{", `{"distance_km": 2}`, `{"user_id": "user-1"}`} {
		req := httptest.NewRequest(http.MethodPost, "/activities", bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil || resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected bad request for %s", body)
		}
	}
}

func TestActivityHandlersCreateError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO activities`).WillReturnError(errActivity)

	app := fiber.New()
	RegisterRoutes(app.Group("/activities"), NewService(mock))

	body, _ := json.Marshal(CreateRequest{UserID: "user-1", FinalizedActivity: sampleFinalized()})
	req := httptest.NewRequest(http.MethodPost, "/activities", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected error status")
	}
}

func TestActivityHandlersGet(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, user_id, title`).
		WithArgs("act-1").
		WillReturnRows(pgxmock.NewRows(activityColumns).
			AddRow("act-1", "user-1", "Run", "easy", 3.1, int64(1100), 354.8, 200.0, 4.0, time.Now(), []byte(`[]`), []byte(`[]`), "live_tracking", time.Now()))
	mock.ExpectQuery(`SELECT id, user_id, title`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT id, user_id, title`).
		WithArgs("broken").
		WillReturnError(errActivity)

	app := fiber.New()
	RegisterRoutes(app.Group("/activities"), NewService(mock))

	cases := map[string]int{
		"/activities/act-1":   http.StatusOK,
		"/activities/missing": http.StatusNotFound,
		"/activities/broken":  http.StatusInternalServerError,
	}
	for _, path := range []string{"/activities/act-1", "/activities/missing", "/activities/broken"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil || resp.StatusCode != cases[path] {
			t.Fatalf("%s: expected %d", path, cases[path])
		}
	}
}

func TestActivityHandlersList(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM activities WHERE user_id=\$1`).
		WithArgs("user-1", 3).
		WillReturnRows(pgxmock.NewRows(activityColumns))

	app := fiber.New()
	RegisterRoutes(app.Group("/activities"), NewService(mock))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/activities?user_id=user-1&limit=3", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list status: %v", err)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/activities", nil))
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request without user_id")
	}
}

func TestActivityHandlersWithoutStore(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/activities"), NewService(nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/activities/a-1", nil))
	if err != nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %v %v", resp, err)
	}
}
