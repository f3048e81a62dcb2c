package postgres

import (
	"github.com/bp848/mqdriven-sub004/internal/approvalroute"
	routeDatamodel "github.com/bp848/mqdriven-sub004/internal/core/datamodel/approvalroute"
	"gorm.io/gorm"
)

type RouteRepository struct {
	db *gorm.DB
}

func NewRouteRepository(db *gorm.DB) approvalroute.RepositoryAPI {
	return &RouteRepository{db: db}
}

func (r *RouteRepository) GetAll() ([]*routeDatamodel.ApprovalRoute, error) {
	var routes []*routeDatamodel.ApprovalRoute
	err := r.db.Order("name ASC").Find(&routes).Error
	return routes, err
}

func (r *RouteRepository) GetByID(id int64) (*routeDatamodel.ApprovalRoute, error) {
	var route routeDatamodel.ApprovalRoute
	err := r.db.Where("id = ?", id).First(&route).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &route, nil
}

func (r *RouteRepository) Create(route *routeDatamodel.ApprovalRoute) error {
	return r.db.Create(route).Error
}

func (r *RouteRepository) Update(route *routeDatamodel.ApprovalRoute) error {
	return r.db.Save(route).Error
}

func (r *RouteRepository) Deactivate(id int64) error {
	return r.db.Model(&routeDatamodel.ApprovalRoute{}).Where("id = ?", id).Update("is_active", false).Error
}
