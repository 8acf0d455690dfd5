package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/secondserve/secondserve-backend/api/middleware"
	"github.com/secondserve/secondserve-backend/internal/catalog"
	"github.com/secondserve/secondserve-backend/internal/rules"
	pkgerrors "github.com/secondserve/secondserve-backend/pkg/errors"
)

type stubCatalogService struct {
	submitFn     func(ctx context.Context, ownerID uuid.UUID, draft rules.Draft) (*catalog.SubmissionResult, error)
	getFn        func(ctx context.Context, id uuid.UUID) (*catalog.ListingDTO, error)
	listOwnerFn  func(ctx context.Context, ownerID uuid.UUID) ([]catalog.ListingDTO, error)
	listActiveFn func(ctx context.Context, query string) ([]catalog.ListingDTO, error)
	approveFn    func(ctx context.Context, id uuid.UUID) (*catalog.ListingDTO, error)
}

func (s stubCatalogService) Submit(ctx context.Context, ownerID uuid.UUID, draft rules.Draft) (*catalog.SubmissionResult, error) {
	return s.submitFn(ctx, ownerID, draft)
}

func (s stubCatalogService) Get(ctx context.Context, id uuid.UUID) (*catalog.ListingDTO, error) {
	return s.getFn(ctx, id)
}

func (s stubCatalogService) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]catalog.ListingDTO, error) {
	return s.listOwnerFn(ctx, ownerID)
}

func (s stubCatalogService) ListActive(ctx context.Context, query string) ([]catalog.ListingDTO, error) {
	return s.listActiveFn(ctx, query)
}

func (s stubCatalogService) Approve(ctx context.Context, id uuid.UUID) (*catalog.ListingDTO, error) {
	return s.approveFn(ctx, id)
}

func (s stubCatalogService) Reject(ctx context.Context, id uuid.UUID) (*catalog.ListingDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not wired")
}

func (s stubCatalogService) Complete(ctx context.Context, id uuid.UUID) (*catalog.ListingDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not wired")
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithUserID(req.Context(), uuid.New().String()))
}

func TestListingsSubmitDonation(t *testing.T) {
	var gotDraft rules.Draft
	svc := stubCatalogService{
		submitFn: func(ctx context.Context, ownerID uuid.UUID, draft rules.Draft) (*catalog.SubmissionResult, error) {
			gotDraft = draft
			return &catalog.SubmissionResult{
				Listing:       catalog.ListingDTO{ID: uuid.New(), Status: "active", Transaction: "donate"},
				PointsAwarded: 10,
				Message:       "Thank you for donating, we will get back to you soon!",
			}, nil
		},
	}
	handler := ListingsSubmit(svc, nil)

	body := `{"name":"Canned soup","category":"Pantry","is_sealed":true,"is_donation":true}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/listings", body))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if !gotDraft.IsDonation || !gotDraft.IsSealed {
		t.Fatalf("draft flags not forwarded: %+v", gotDraft)
	}

	var envelope struct {
		Data submissionResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.PointsAwarded != 10 {
		t.Fatalf("expected 10 points got %d", envelope.Data.PointsAwarded)
	}
	if envelope.Data.Listing.StatusLabel != "Active" {
		t.Fatalf("expected Active label got %q", envelope.Data.Listing.StatusLabel)
	}
}

func TestListingsSubmitRejectsUnknownFields(t *testing.T) {
	handler := ListingsSubmit(stubCatalogService{}, nil)

	body := `{"name":"Bread","category":"Bakery","bogus":true}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/listings", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListingsSubmitMissingName(t *testing.T) {
	handler := ListingsSubmit(stubCatalogService{}, nil)

	body := `{"category":"Bakery"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/listings", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListingsSubmitRequiresUserContext(t *testing.T) {
	handler := ListingsSubmit(stubCatalogService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/listings", strings.NewReader(`{"name":"x","category":"y"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestListingsBrowseForwardsQuery(t *testing.T) {
	var gotQuery string
	svc := stubCatalogService{
		listActiveFn: func(ctx context.Context, query string) ([]catalog.ListingDTO, error) {
			gotQuery = query
			return []catalog.ListingDTO{
				{ID: uuid.New(), Status: "active"},
				{ID: uuid.New(), Status: "pending_approval"},
			}, nil
		},
	}
	handler := ListingsBrowse(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/listings?q=veggie", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotQuery != "veggie" {
		t.Fatalf("expected query forwarded, got %q", gotQuery)
	}

	var envelope struct {
		Data []listingResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected 2 listings got %d", len(envelope.Data))
	}
	if envelope.Data[1].StatusLabel != "Pending" {
		t.Fatalf("expected Pending label got %q", envelope.Data[1].StatusLabel)
	}
}

func TestListingsBrowseAppliesLimit(t *testing.T) {
	svc := stubCatalogService{
		listActiveFn: func(ctx context.Context, query string) ([]catalog.ListingDTO, error) {
			return []catalog.ListingDTO{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}, nil
		},
	}
	handler := ListingsBrowse(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/listings?limit=2", ""))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data []listingResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected 2 listings got %d", len(envelope.Data))
	}
}

func TestListingsGetNotFound(t *testing.T) {
	svc := stubCatalogService{
		getFn: func(ctx context.Context, id uuid.UUID) (*catalog.ListingDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		},
	}
	handler := ListingsGet(svc, nil)

	req := authedRequest(http.MethodGet, "/api/v1/listings/"+uuid.New().String(), "")
	req = withURLParam(req, "listingId", uuid.New().String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestListingsApproveConflict(t *testing.T) {
	svc := stubCatalogService{
		approveFn: func(ctx context.Context, id uuid.UUID) (*catalog.ListingDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "listing cannot move from active to active")
		},
	}
	handler := ListingsApprove(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/listings/x/approve", "")
	req = withURLParam(req, "listingId", uuid.New().String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
