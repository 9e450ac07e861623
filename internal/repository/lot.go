package repository

import (
	"context"
	"fmt"

	"github.com/communityhub/goldledger/internal/domain"
	"github.com/communityhub/goldledger/internal/repository/dao"
)

type LotDAO interface {
	InsertForActiveCycle(ctx context.Context, programID, userID uint) (dao.Lot, error)
	FindByID(ctx context.Context, id uint) (dao.Lot, error)
	ToggleStatus(ctx context.Context, id uint) (dao.Lot, error)
	ListByCycle(ctx context.Context, cycleID uint, params dao.ListParams) ([]dao.Lot, int64, error)
}

type LotRepository struct {
	dao LotDAO
}

func NewLotRepository(dao LotDAO) *LotRepository {
	return &LotRepository{
		dao: dao,
	}
}

func (r *LotRepository) CreateForActiveCycle(ctx context.Context, programID, userID uint) (domain.Lot, error) {
	created, err := r.dao.InsertForActiveCycle(ctx, programID, userID)
	if err != nil {
		return domain.Lot{}, fmt.Errorf("r.dao.InsertForActiveCycle -> %w", err)
	}

	return lotDaoToDomain(created), nil
}

func (r *LotRepository) GetByID(ctx context.Context, id uint) (domain.Lot, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Lot{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return lotDaoToDomain(found), nil
}

func (r *LotRepository) ToggleStatus(ctx context.Context, id uint) (domain.Lot, error) {
	toggled, err := r.dao.ToggleStatus(ctx, id)
	if err != nil {
		return domain.Lot{}, fmt.Errorf("r.dao.ToggleStatus -> %w", err)
	}

	return lotDaoToDomain(toggled), nil
}

func (r *LotRepository) ListByCycle(ctx context.Context, cycleID uint, q domain.PageQuery) ([]domain.Lot, int64, error) {
	found, total, err := r.dao.ListByCycle(ctx, cycleID, listParams(q))
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.ListByCycle -> %w", err)
	}

	lots := make([]domain.Lot, len(found))
	for i, l := range found {
		lots[i] = lotDaoToDomain(l)
	}

	return lots, total, nil
}

func lotDaoToDomain(l dao.Lot) domain.Lot {
	lot := domain.Lot{
		ID:        l.ID,
		CycleID:   l.CycleID,
		UserID:    l.UserID,
		IsActive:  l.IsActive,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}

	if l.User != nil {
		user := userDaoToDomain(*l.User)
		lot.User = &user
	}

	return lot
}
