// Package api 将服务暴露为 HTTP 接口
package api

import (
	"net/http"

	"conference/auth"
	"conference/httpx"
	"conference/service"
)

// Handlers HTTP 处理器集合
type Handlers struct {
	svc *service.Services
}

// NewHandlers 创建处理器
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{svc: svc}
}

// Register 在路由组上注册全部接口
func (h *Handlers) Register(r httpx.IRouteGroup) {
	r.GET("/profile", h.getProfile)
	r.POST("/profile", h.saveProfile)

	r.POST("/conference", h.createConference)
	r.GET("/conference/announcement/get", h.getAnnouncement)
	r.PUT("/conference/:websafeConferenceKey", h.updateConference)
	r.GET("/conference/:websafeConferenceKey", h.getConference)
	r.POST("/getConferencesCreated", h.getConferencesCreated)
	r.POST("/queryConferences", h.queryConferences)
	r.POST("/conference/:websafeConferenceKey/registration", h.register)
	r.DELETE("/conference/:websafeConferenceKey/registration", h.unregister)
	r.GET("/conferences/attending", h.conferencesAttending)

	r.POST("/conference/:websafeConferenceKey/session", h.createSession)
	r.GET("/conference/:websafeConferenceKey/sessions", h.conferenceSessions)
	r.GET("/conference/:websafeConferenceKey/sessions/:sessionType", h.conferenceSessionsByType)
	r.GET("/speaker/:websafeSpeakerKey/sessions", h.speakerSessions)
	r.POST("/querySessions", h.querySessions)

	r.GET("/speakers", h.speakers)
	r.GET("/speaker/featured", h.featuredSpeaker)

	r.POST("/wishlist/:websafeSessionKey", h.addToWishlist)
	r.DELETE("/wishlist/:websafeSessionKey", h.removeFromWishlist)
	r.GET("/wishlist", h.wishlistSessions)
	r.GET("/wishlist/sessions-by-speakers", h.wishlistSessionsBySpeakers)
	r.GET("/wishlist/sessions-by-types", h.wishlistSessionsByTypes)
}

func respond[T any](ctx httpx.IHttpContext, out T, err error) error {
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, out)
}

// withUser 要求已认证用户
func withUser[T any](ctx httpx.IHttpContext, fn func(u *auth.User) (T, error)) error {
	u, err := auth.RequireUser(ctx.Context())
	if err != nil {
		return err
	}
	out, err := fn(u)
	return respond(ctx, out, err)
}
