package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/product_api/internal/logging"
	"github.com/Skotchmaster/product_api/internal/models"
	"github.com/Skotchmaster/product_api/internal/mykafka"
	"github.com/Skotchmaster/product_api/internal/repo"
)

var ErrSearchDisabled = errors.New("search is not configured")

type ProductRepo interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, f repo.ProductFilter) (int64, []models.Product, error)
	SaveProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// Indexer mirrors products into a search backend.
type Indexer interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type ProductService struct {
	Repo   ProductRepo
	Events Publisher
	Index  Indexer
}

type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Tags        []string
}

type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Tags        []string
}

func (s *ProductService) Create(ctx context.Context, callerID string, in ProductInput) (*models.Product, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Description) == "" || in.Price < 0 || in.Tags == nil {
		return nil, newError(ErrValidation, MsgInvalidProduct)
	}

	prod := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Tags:        in.Tags,
		CreatedBy:   callerID,
	}
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.index(ctx, prod)
	publish(ctx, s.Events, mykafka.TopicProductEvents, prod.ID, map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
		"price":     prod.Price,
		"userID":    callerID,
	})
	return prod, nil
}

func (s *ProductService) List(ctx context.Context, f repo.ProductFilter) (int64, []models.Product, error) {
	return s.Repo.ListProducts(ctx, f)
}

// Get returns (nil, nil) when no product has the id.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	prod, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	return prod, err
}

func (s *ProductService) Update(ctx context.Context, callerID, id string, patch ProductPatch) (*models.Product, error) {
	prod, err := s.owned(ctx, callerID, id, MsgProductUpdate)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, newError(ErrValidation, MsgInvalidProduct)
		}
		prod.Name = *patch.Name
	}
	if patch.Description != nil {
		if strings.TrimSpace(*patch.Description) == "" {
			return nil, newError(ErrValidation, MsgInvalidProduct)
		}
		prod.Description = *patch.Description
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, newError(ErrValidation, MsgInvalidProduct)
		}
		prod.Price = *patch.Price
	}
	if patch.Tags != nil {
		prod.Tags = patch.Tags
	}

	if err := s.Repo.SaveProduct(ctx, prod); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, productNotFound(id)
		}
		return nil, fmt.Errorf("save product: %w", err)
	}

	s.index(ctx, prod)
	publish(ctx, s.Events, mykafka.TopicProductEvents, prod.ID, map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"userID":    callerID,
	})
	return prod, nil
}

func (s *ProductService) Delete(ctx context.Context, callerID, id string) error {
	if _, err := s.owned(ctx, callerID, id, MsgProductDelete); err != nil {
		return err
	}

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return productNotFound(id)
		}
		return fmt.Errorf("delete product: %w", err)
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Error("unindex_product_error", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicProductEvents, id, map[string]any{
		"type":      "product_deleted",
		"productID": id,
		"userID":    callerID,
	})
	return nil
}

func (s *ProductService) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	if s.Index == nil {
		return 0, nil, ErrSearchDisabled
	}
	if strings.TrimSpace(query) == "" {
		return 0, nil, newError(ErrValidation, "query error")
	}
	return s.Index.Search(ctx, query, from, size)
}

func (s *ProductService) owned(ctx context.Context, callerID, id, forbidden string) (*models.Product, error) {
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, productNotFound(id)
		}
		return nil, err
	}
	if prod.CreatedBy != callerID {
		return nil, newError(ErrForbidden, forbidden)
	}
	return prod, nil
}

func (s *ProductService) index(ctx context.Context, prod *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, prod); err != nil {
		logging.FromContext(ctx).Error("index_product_error", "product_id", prod.ID, "error", err)
	}
}

func productNotFound(id string) error {
	return newError(ErrNotFound, "cannot find product with the ID of %s", id)
}
