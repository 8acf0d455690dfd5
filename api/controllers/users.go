package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/secondserve/secondserve-backend/api/responses"
	"github.com/secondserve/secondserve-backend/api/validators"
	"github.com/secondserve/secondserve-backend/internal/ledger"
	"github.com/secondserve/secondserve-backend/internal/users"
	pkgerrors "github.com/secondserve/secondserve-backend/pkg/errors"
	"github.com/secondserve/secondserve-backend/pkg/logger"
)

// UsersMe returns the caller's profile.
func UsersMe(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Get(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type updateProfilePayload struct {
	DisplayName string   `json:"display_name" validate:"max=120"`
	Email       string   `json:"email" validate:"omitempty,email"`
	Phone       string   `json:"phone" validate:"max=30"`
	RadiusMiles *float64 `json:"radius_miles"`
}

// UsersUpdateProfile applies a partial profile update. Empty string
// fields keep their previous values.
func UsersUpdateProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateProfilePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.UpdateProfile(ctx, userID, users.UpdateProfileInput{
			DisplayName: strings.TrimSpace(payload.DisplayName),
			Email:       strings.TrimSpace(payload.Email),
			Phone:       strings.TrimSpace(payload.Phone),
			RadiusMiles: payload.RadiusMiles,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type updatePreferencesPayload struct {
	DietaryPreferences []string `json:"dietary_preferences" validate:"required,max=20,dive,min=1,max=60"`
}

// UsersUpdatePreferences replaces the caller's dietary preferences.
func UsersUpdatePreferences(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updatePreferencesPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		preferences := make([]string, 0, len(payload.DietaryPreferences))
		for _, pref := range payload.DietaryPreferences {
			if trimmed := strings.TrimSpace(pref); trimmed != "" {
				preferences = append(preferences, trimmed)
			}
		}

		dto, err := svc.UpdatePreferences(ctx, userID, preferences)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type updatePrivacyPayload struct {
	MaskAddress        bool `json:"mask_address"`
	InAppMessagingOnly bool `json:"in_app_messaging_only"`
	AIDataOptIn        bool `json:"ai_data_opt_in"`
	AIDataProgram      bool `json:"ai_data_program"`
}

// UsersUpdatePrivacy applies the caller's privacy and consent choices.
// The consent timestamp is stamped server side when the program
// consent flips.
func UsersUpdatePrivacy(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updatePrivacyPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.UpdatePrivacy(ctx, userID, users.UpdatePrivacyInput{
			MaskAddress:        payload.MaskAddress,
			InAppMessagingOnly: payload.InAppMessagingOnly,
			AIDataOptIn:        payload.AIDataOptIn,
			AIDataProgram:      payload.AIDataProgram,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type pointsEntryResponse struct {
	ID        string `json:"id"`
	ListingID string `json:"listing_id"`
	Type      string `json:"type"`
	Points    int    `json:"points"`
	CreatedAt string `json:"created_at"`
}

type pointsResponse struct {
	Balance int                   `json:"balance"`
	History []pointsEntryResponse `json:"history"`
}

// UsersPoints returns the caller's points balance with the full
// credit history behind it.
func UsersPoints(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		balance, err := svc.Balance(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		entries, err := svc.History(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		history := make([]pointsEntryResponse, len(entries))
		for i, entry := range entries {
			history[i] = pointsEntryResponse{
				ID:        entry.ID.String(),
				ListingID: entry.ListingID.String(),
				Type:      string(entry.Type),
				Points:    entry.Points,
				CreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339),
			}
		}
		responses.WriteSuccess(w, pointsResponse{Balance: balance, History: history})
	}
}
