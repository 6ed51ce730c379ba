package handlers

import (
	"net/http"

	"github.com/playtube/backend/internal/apperr"
	"github.com/playtube/backend/internal/logging"
	"github.com/playtube/backend/internal/repositories"
)

// SubscriptionHandler implements the subscription edge endpoints.
type SubscriptionHandler struct {
	Edges EdgeStore
	Graph GraphStore
}

// Toggle handles POST /api/v1/subscriptions/c/{channelId}. Subscribing to a
// channel that is already subscribed removes the edge; a user can never
// subscribe to themselves.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := requireUser(ctx, w)
	if !ok {
		return
	}

	channelID := r.PathValue("channelId")
	if channelID == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "channel id is required"))
		return
	}
	if channelID == user.ID {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "you cannot subscribe to your own channel"))
		return
	}

	subscribed, err := h.Edges.ToggleSubscription(ctx, user.ID, channelID)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to toggle subscription", err))
		return
	}

	logging.FromContext(ctx).Info("subscription toggled",
		"subscriberId", user.ID, "channelId", channelID, "subscribed", subscribed)

	message := "unsubscribed from the channel"
	if subscribed {
		message = "subscribed to the channel"
	}
	respondData(ctx, w, http.StatusOK, map[string]bool{"subscribed": subscribed}, message)
}

// Subscribers handles GET /api/v1/subscriptions/u/{channelId}.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := requireUser(ctx, w); !ok {
		return
	}

	channelID := r.PathValue("channelId")
	if channelID == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "channel id is required"))
		return
	}

	edges, err := h.Graph.ChannelSubscribers(ctx, channelID)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to list subscribers", err))
		return
	}
	if edges == nil {
		edges = []repositories.SubscriptionEdge{}
	}

	respondData(ctx, w, http.StatusOK, edges, "subscribers fetched successfully")
}

// Subscriptions handles GET /api/v1/subscriptions/c/{subscriberId}.
func (h SubscriptionHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := requireUser(ctx, w); !ok {
		return
	}

	subscriberID := r.PathValue("subscriberId")
	if subscriberID == "" {
		respondError(ctx, w, apperr.New(apperr.KindBadRequest, "subscriber id is required"))
		return
	}

	edges, err := h.Graph.SubscribedChannels(ctx, subscriberID)
	if err != nil {
		respondError(ctx, w, apperr.Wrap(apperr.KindInternal, "failed to list subscribed channels", err))
		return
	}
	if edges == nil {
		edges = []repositories.SubscriptionEdge{}
	}

	respondData(ctx, w, http.StatusOK, edges, "subscribed channels fetched successfully")
}
