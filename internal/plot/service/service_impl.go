package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sadovo/vznos/internal/plot/domain"
	"github.com/sadovo/vznos/pkg/db"
	"github.com/sadovo/vznos/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("plot.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePlotRequest) (domain.Plot, error) {
	number := strings.TrimSpace(req.Number)
	if number == "" {
		return domain.Plot{}, domain.ErrInvalidNumber
	}
	owner := strings.TrimSpace(req.OwnerName)
	if owner == "" {
		return domain.Plot{}, domain.ErrInvalidOwner
	}
	if req.AreaSqm < 0 {
		return domain.Plot{}, domain.ErrInvalidArea
	}

	phone := strings.TrimSpace(req.Phone)
	now := time.Now().UTC()
	plot := domain.Plot{
		ID:              s.genID.Generate(),
		Number:          number,
		OwnerName:       owner,
		Phone:           phone,
		PhoneNormalized: NormalizePhone(phone),
		AreaSqm:         req.AreaSqm,
		Metadata:        datatypes.JSONMap{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &plot); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Plot{}, domain.ErrDuplicateNumber
		}
		return domain.Plot{}, err
	}

	return plot, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdatePlotRequest) (domain.Plot, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Plot{}, err
	}

	plot, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Plot{}, err
	}
	if plot == nil {
		return domain.Plot{}, domain.ErrNotFound
	}

	if req.OwnerName != nil {
		owner := strings.TrimSpace(*req.OwnerName)
		if owner == "" {
			return domain.Plot{}, domain.ErrInvalidOwner
		}
		plot.OwnerName = owner
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		plot.Phone = phone
		plot.PhoneNormalized = NormalizePhone(phone)
	}
	if req.AreaSqm != nil {
		if *req.AreaSqm < 0 {
			return domain.Plot{}, domain.ErrInvalidArea
		}
		plot.AreaSqm = *req.AreaSqm
	}
	plot.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, plot); err != nil {
		return domain.Plot{}, err
	}

	return *plot, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Plot, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.Plot{}, err
	}

	plot, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Plot{}, err
	}
	if plot == nil {
		return domain.Plot{}, domain.ErrNotFound
	}

	return *plot, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPlotRequest) (domain.ListPlotResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, domain.ListPlotFilter{
		Number:    strings.TrimSpace(req.Number),
		OwnerName: strings.TrimSpace(req.OwnerName),
	}, pagination.Pagination{PageToken: req.PageToken, PageSize: pageSize})
	if err != nil {
		return domain.ListPlotResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(plot *domain.Plot) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: plot.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	plots := make([]domain.Plot, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		plots = append(plots, *item)
	}

	resp := domain.ListPlotResponse{Plots: plots}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

// NormalizePhone strips everything but digits and maps a leading 8 to 7
// so that 8-900-123-45-67 and +7 900 123 45 67 compare equal.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '8' {
		digits = "7" + digits[1:]
	}
	return digits
}
