package service

import (
	repo "style-filter-server/internal/repository"
	"style-filter-server/internal/storage"
)

type AuthService struct {
	userStore      repo.UserStore
	magicLinkStore repo.MagicLinkStore
}

type FilterService struct {
	filterStore repo.StyleFilterStore
	userStore   repo.UserStore
	storage     storage.FilterStorage
}

func NewAuthService(userStore repo.UserStore, magicLinkStore repo.MagicLinkStore) *AuthService {
	return &AuthService{userStore: userStore, magicLinkStore: magicLinkStore}
}

func NewFilterService(filterStore repo.StyleFilterStore, userStore repo.UserStore, filterStorage storage.FilterStorage) *FilterService {
	return &FilterService{filterStore: filterStore, userStore: userStore, storage: filterStorage}
}
