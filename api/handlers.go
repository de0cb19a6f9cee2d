package api

import (
	"conference/auth"
	"conference/httpx"
	"conference/service"
)

func (h *Handlers) getProfile(ctx httpx.IHttpContext) error {
	return withUser(ctx, func(u *auth.User) (*service.ProfileForm, error) {
		return h.svc.Profiles.GetProfile(ctx.Context(), u)
	})
}

func (h *Handlers) saveProfile(ctx httpx.IHttpContext) error {
	var form service.ProfileMiniForm
	if err := ctx.BindJSON(&form); err != nil {
		return err
	}
	return withUser(ctx, func(u *auth.User) (*service.ProfileForm, error) {
		return h.svc.Profiles.SaveProfile(ctx.Context(), u, form)
	})
}

func (h *Handlers) createConference(ctx httpx.IHttpContext) error {
	var form service.ConferenceForm
	if err := ctx.BindJSON(&form); err != nil {
		return err
	}
	return withUser(ctx, func(u *auth.User) (*service.ConferenceForm, error) {
		return h.svc.Conferences.Create(ctx.Context(), u, form)
	})
}

func (h *Handlers) updateConference(ctx httpx.IHttpContext) error {
	var form service.ConferenceForm
	if err := ctx.BindJSON(&form); err != nil {
		return err
	}
	return withUser(ctx, func(u *auth.User) (*service.ConferenceForm, error) {
		return h.svc.Conferences.Update(ctx.Context(), u, ctx.GetParam("websafeConferenceKey"), form)
	})
}

func (h *Handlers) getConference(ctx httpx.IHttpContext) error {
	out, err := h.svc.Conferences.Get(ctx.Context(), ctx.GetParam("websafeConferenceKey"))
	return respond(ctx, out, err)
}

func (h *Handlers) getConferencesCreated(ctx httpx.IHttpContext) error {
	return withUser(ctx, func(u *auth.User) (*service.ConferenceForms, error) {
		return h.svc.Conferences.ListCreated(ctx.Context(), u)
	})
}

func (h *Handlers) queryConferences(ctx httpx.IHttpContext) error {
	var form service.ConferenceQueryForms
	if err := ctx.BindJSON(&form); err != nil {
		return err
	}
	out, err := h.svc.Conferences.Query(ctx.Context(), form)
	return respond(ctx, out, err)
}

func (h *Handlers) register(ctx httpx.IHttpContext) error {
	return withUser(ctx, func(u *auth.User) (*service.BooleanMessage, error) {
		return h.svc.Conferences.Register(ctx.Context(), u, ctx.GetParam("websafeConferenceKey"))
	})
}

func (h *Handlers) unregister(ctx httpx.IHttpContext) error {
	return withUser(ctx, func(u *auth.User) (*service.BooleanMessage, error) {
		return h.svc.Conferences.Unregister(ctx.Context(), u, ctx.GetParam("websafeConferenceKey"))
	})
}

func (h *Handlers) conferencesAttending(ctx httpx.IHttpContext) error {
	return withUser(ctx, func(u *auth.User) (*service.ConferenceForms, error) {
		return h.svc.Conferences.ListAttending(ctx.Context(), u)
	})
}

func (h *Handlers) getAnnouncement(ctx httpx.IHttpContext) error {
	out, err := h.svc.Announcements.Get(ctx.Context())
	return respond(ctx, out, err)
}

func (h *Handlers) createSession(ctx httpx.IHttpContext) error {
	var form service.SessionForm
	if err := ctx.BindJSON(&form); err != nil {
		return err
	}
	return withUser(ctx, func(u *auth.User) (*service.SessionForm, error) {
		return h.svc.Sessions.Create(ctx.Context(), u, ctx.GetParam("websafeConferenceKey"), form)
	})
}

func (h *Handlers) conferenceSessions(ctx httpx.IHttpContext) error {
	out, err := h.svc.Sessions.ListByConference(ctx.Context(), ctx.GetParam("websafeConferenceKey"))
	return respond(ctx, out, err)
}

func (h *Handlers) conferenceSessionsByType(ctx httpx.IHttpContext) error {
	out, err := h.svc.Sessions.ListByConferenceAndType(ctx.Context(),
		ctx.GetParam("websafeConferenceKey"), ctx.GetParam("sessionType"))
	return respond(ctx, out, err)
}

func (h *Handlers) speakerSessions(ctx httpx.IHttpContext) error {
	out, err := h.svc.Sessions.ListBySpeaker(ctx.Context(), ctx.GetParam("websafeSpeakerKey"))
	return respond(ctx, out, err)
}

func (h *Handlers) querySessions(ctx httpx.IHttpContext) error {
	var form service.SessionQueryForms
	if err := ctx.BindJSON(&form); err != nil {
		return err
	}
	out, err := h.svc.Sessions.QueryByTypeAndFilters(ctx.Context(), form)
	return respond(ctx, out, err)
}

func (h *Handlers) speakers(ctx httpx.IHttpContext) error {
	out, err := h.svc.Speakers.List(ctx.Context())
	return respond(ctx, out, err)
}

func (h *Handlers) featuredSpeaker(ctx httpx.IHttpContext) error {
	out, err := h.svc.FeaturedSpeaker.Get(ctx.Context())
	return respond(ctx, out, err)
}

func (h *Handlers) addToWishlist(ctx httpx.IHttpContext) error {
	return withUser(ctx, func(u *auth.User) (*service.WishlistForm, error) {
		return h.svc.Wishlists.Add(ctx.Context(), u, ctx.GetParam("websafeSessionKey"))
	})
}

func (h *Handlers) removeFromWishlist(ctx httpx.IHttpContext) error {
	return withUser(ctx, func(u *auth.User) (*service.WishlistForm, error) {
		return h.svc.Wishlists.Remove(ctx.Context(), u, ctx.GetParam("websafeSessionKey"))
	})
}

func (h *Handlers) wishlistSessions(ctx httpx.IHttpContext) error {
	return withUser(ctx, func(u *auth.User) (*service.SessionForms, error) {
		return h.svc.Wishlists.Sessions(ctx.Context(), u)
	})
}

func (h *Handlers) wishlistSessionsBySpeakers(ctx httpx.IHttpContext) error {
	return withUser(ctx, func(u *auth.User) (*service.SessionForms, error) {
		return h.svc.Wishlists.SessionsBySpeakers(ctx.Context(), u)
	})
}

func (h *Handlers) wishlistSessionsByTypes(ctx httpx.IHttpContext) error {
	return withUser(ctx, func(u *auth.User) (*service.SessionForms, error) {
		return h.svc.Wishlists.SessionsByTypes(ctx.Context(), u)
	})
}
