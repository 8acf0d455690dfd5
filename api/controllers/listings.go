package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/secondserve/secondserve-backend/api/middleware"
	"github.com/secondserve/secondserve-backend/api/responses"
	"github.com/secondserve/secondserve-backend/api/validators"
	"github.com/secondserve/secondserve-backend/internal/catalog"
	"github.com/secondserve/secondserve-backend/internal/rules"
	pkgerrors "github.com/secondserve/secondserve-backend/pkg/errors"
	"github.com/secondserve/secondserve-backend/pkg/logger"
)

// statusLabels maps lifecycle statuses to their display names. Purely a
// presentation concern, kept out of the engine.
var statusLabels = map[string]string{
	"pending_approval": "Pending",
	"active":           "Active",
	"completed":        "Completed",
	"rejected":         "Rejected",
}

type listingResponse struct {
	catalog.ListingDTO
	StatusLabel string `json:"status_label"`
}

type submissionResponse struct {
	Listing       listingResponse `json:"listing"`
	PointsAwarded int             `json:"points_awarded"`
	Message       string          `json:"message"`
}

func newListingResponse(dto catalog.ListingDTO) listingResponse {
	label, ok := statusLabels[dto.Status]
	if !ok {
		label = dto.Status
	}
	return listingResponse{ListingDTO: dto, StatusLabel: label}
}

func newListingResponses(dtos []catalog.ListingDTO) []listingResponse {
	out := make([]listingResponse, len(dtos))
	for i, dto := range dtos {
		out[i] = newListingResponse(dto)
	}
	return out
}

type submitListingPayload struct {
	Name         string  `json:"name" validate:"required,min=1,max=200"`
	Category     string  `json:"category" validate:"required,min=1,max=100"`
	Description  string  `json:"description" validate:"max=2000"`
	LocationText string  `json:"location_text" validate:"max=500"`
	IsSealed     bool    `json:"is_sealed"`
	IsDonation   bool    `json:"is_donation"`
	Price        string  `json:"price" validate:"omitempty,max=20"`
	ExpiresAt    *string `json:"expires_at" validate:"omitempty"`
}

// ListingsSubmit finalizes and stores a new listing for the caller.
func ListingsSubmit(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		ownerID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload submitListingPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		draft := rules.Draft{
			Name:         strings.TrimSpace(payload.Name),
			Category:     strings.TrimSpace(payload.Category),
			Description:  strings.TrimSpace(payload.Description),
			LocationText: strings.TrimSpace(payload.LocationText),
			IsSealed:     payload.IsSealed,
			IsDonation:   payload.IsDonation,
			Price:        strings.TrimSpace(payload.Price),
		}
		if payload.ExpiresAt != nil {
			expires, parseErr := time.Parse(time.RFC3339, *payload.ExpiresAt)
			if parseErr != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "expires_at must be RFC 3339"))
				return
			}
			draft.ExpiresAt = expires
		}

		result, err := svc.Submit(ctx, ownerID, draft)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, submissionResponse{
			Listing:       newListingResponse(result.Listing),
			PointsAwarded: result.PointsAwarded,
			Message:       result.Message,
		})
	}
}

// ListingsBrowse returns the browsable listings, optionally narrowed by
// the q parameter and capped by limit.
func ListingsBrowse(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 500)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		query := strings.TrimSpace(r.URL.Query().Get("q"))
		listings, err := svc.ListActive(ctx, query)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if limit > 0 && len(listings) > limit {
			listings = listings[:limit]
		}
		responses.WriteSuccess(w, newListingResponses(listings))
	}
}

// ListingsMine returns the caller's listings in submission order.
func ListingsMine(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		ownerID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		listings, err := svc.ListForOwner(ctx, ownerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newListingResponses(listings))
	}
}

// ListingsGet returns one listing by id.
func ListingsGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		listingID, err := listingIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		listing, err := svc.Get(ctx, listingID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newListingResponse(*listing))
	}
}

// ListingsApprove moves a pending listing to active.
func ListingsApprove(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return listingTransition(svc, logg, func(ctx context.Context, id uuid.UUID) (*catalog.ListingDTO, error) {
		return svc.Approve(ctx, id)
	})
}

// ListingsReject moves a pending listing to rejected.
func ListingsReject(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return listingTransition(svc, logg, func(ctx context.Context, id uuid.UUID) (*catalog.ListingDTO, error) {
		return svc.Reject(ctx, id)
	})
}

// ListingsComplete moves an active listing to completed.
func ListingsComplete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return listingTransition(svc, logg, func(ctx context.Context, id uuid.UUID) (*catalog.ListingDTO, error) {
		return svc.Complete(ctx, id)
	})
}

func listingTransition(svc catalog.Service, logg *logger.Logger, apply func(context.Context, uuid.UUID) (*catalog.ListingDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		listingID, err := listingIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		listing, err := apply(ctx, listingID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newListingResponse(*listing))
	}
}

func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return userID, nil
}

func listingIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "listingId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}
	listingID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid listing id")
	}
	return listingID, nil
}
