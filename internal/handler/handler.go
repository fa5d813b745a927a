package handler

import "style-filter-server/internal/service"

type Handler struct {
	authService   *service.AuthService
	filterService *service.FilterService
}

func NewHandler(authService *service.AuthService, filterService *service.FilterService) *Handler {
	return &Handler{
		authService:   authService,
		filterService: filterService,
	}
}
