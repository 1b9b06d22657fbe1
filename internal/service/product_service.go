package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/marketgo/internal/apperr"
	"github.com/nikolayk812/marketgo/internal/domain"
	"github.com/nikolayk812/marketgo/internal/port"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const maxProductImages = 5

type ProductService struct {
	products   port.ProductRepository
	categories port.CategoryRepository
	blob       port.BlobStorage
	log        logrus.FieldLogger
}

func NewProduct(
	products port.ProductRepository,
	categories port.CategoryRepository,
	blob port.BlobStorage,
	log logrus.FieldLogger,
) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		blob:       blob,
		log:        log,
	}
}

type CreateProductInput struct {
	Title       string
	Description string
	Price       domain.Money
	Quantity    int
	CategoryID  uuid.UUID
	Images      []ImageUpload
}

type ImageUpload struct {
	Name string
	Data []byte
}

type UpdateProductInput struct {
	Title       string
	Description string
	Price       domain.Money
	Quantity    int
}

func (in CreateProductInput) validate() error {
	switch {
	case in.Title == "":
		return apperr.New(apperr.KindValidation, "title cannot be empty")
	case in.Description == "":
		return apperr.New(apperr.KindValidation, "description cannot be empty")
	case in.Price.Amount.IsNegative():
		return apperr.New(apperr.KindValidation, "price cannot be negative")
	case in.Quantity < 0:
		return apperr.New(apperr.KindValidation, "quantity cannot be negative")
	case len(in.Images) > maxProductImages:
		return apperr.New(apperr.KindValidation, "you exceeded the number of images allowed")
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, user domain.SessionUser, in CreateProductInput) (domain.Product, error) {
	var p domain.Product

	if err := in.validate(); err != nil {
		return p, err
	}

	if _, err := s.categories.GetCategory(ctx, in.CategoryID); err != nil {
		return p, fmt.Errorf("categories.GetCategory: %w", err)
	}

	product := domain.Product{
		OwnerID:     user.ID,
		CategoryID:  in.CategoryID,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Status:      domain.ProductStatusActive,
	}

	productID, err := s.products.InsertProduct(ctx, product)
	if err != nil {
		return p, fmt.Errorf("products.InsertProduct: %w", err)
	}
	product.ID = productID

	if len(in.Images) > 0 {
		paths, err := s.uploadImages(ctx, in.Images)
		if err != nil {
			return p, fmt.Errorf("uploadImages: %w", err)
		}

		if err := s.products.AddImages(ctx, productID, paths); err != nil {
			return p, fmt.Errorf("products.AddImages: %w", err)
		}
	}

	return product, nil
}

// uploadImages stores all images concurrently and joins the results,
// one failed upload fails the whole create.
func (s *ProductService) uploadImages(ctx context.Context, images []ImageUpload) ([]string, error) {
	paths := make([]string, len(images))

	g, gctx := errgroup.WithContext(ctx)
	for i, img := range images {
		g.Go(func() error {
			path := fmt.Sprintf("products/%d_%s", time.Now().UnixNano(), img.Name)
			if err := s.blob.Upload(gctx, path, img.Data); err != nil {
				return fmt.Errorf("blob.Upload[%s]: %w", img.Name, err)
			}
			paths[i] = path
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return paths, nil
}

// Get returns an active product with its image paths resolved to
// retrievable URLs, resolved concurrently like the uploads.
func (s *ProductService) Get(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("products.GetProduct: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range product.Images {
		g.Go(func() error {
			url, err := s.blob.URL(gctx, product.Images[i].Path)
			if err != nil {
				return fmt.Errorf("blob.URL[%s]: %w", product.Images[i].Path, err)
			}
			product.Images[i].URL = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Product{}, err
	}

	return product, nil
}

func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("products.ListProducts: %w", err)
	}
	return products, nil
}

func (s *ProductService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Product, error) {
	products, err := s.products.ListProductsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("products.ListProductsByOwner: %w", err)
	}
	return products, nil
}

func (s *ProductService) Update(ctx context.Context, user domain.SessionUser, productID uuid.UUID, in UpdateProductInput) error {
	product, err := s.ownedProduct(ctx, user, productID)
	if err != nil {
		return err
	}

	product.Title = in.Title
	product.Description = in.Description
	product.Price = in.Price
	product.Quantity = in.Quantity

	if err := s.products.UpdateProduct(ctx, product); err != nil {
		return fmt.Errorf("products.UpdateProduct: %w", err)
	}

	return nil
}

func (s *ProductService) Delete(ctx context.Context, user domain.SessionUser, productID uuid.UUID) error {
	product, err := s.ownedProduct(ctx, user, productID)
	if err != nil {
		return err
	}

	if err := product.Delete(); err != nil {
		return apperr.Wrap(apperr.KindInternal, "product transition", err)
	}

	if err := s.products.SoftDeleteProduct(ctx, productID); err != nil {
		return fmt.Errorf("products.SoftDeleteProduct: %w", err)
	}

	return nil
}

func (s *ProductService) ownedProduct(ctx context.Context, user domain.SessionUser, productID uuid.UUID) (domain.Product, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("products.GetProduct: %w", err)
	}

	if product.OwnerID != user.ID {
		return domain.Product{}, apperr.New(apperr.KindForbidden, "you can only modify your own products")
	}

	return product, nil
}

func (s *ProductService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("categories.ListCategories: %w", err)
	}
	return categories, nil
}

func (s *ProductService) CreateCategory(ctx context.Context, user domain.SessionUser, name string) (domain.Category, error) {
	if err := requireAdmin(user); err != nil {
		return domain.Category{}, err
	}

	if name == "" {
		return domain.Category{}, apperr.New(apperr.KindValidation, "name cannot be empty")
	}

	category, err := s.categories.InsertCategory(ctx, name)
	if err != nil {
		return domain.Category{}, fmt.Errorf("categories.InsertCategory: %w", err)
	}

	return category, nil
}

func (s *ProductService) UpdateCategory(ctx context.Context, user domain.SessionUser, categoryID uuid.UUID, name string) error {
	if err := requireAdmin(user); err != nil {
		return err
	}

	if name == "" {
		return apperr.New(apperr.KindValidation, "name cannot be empty")
	}

	if err := s.categories.UpdateCategory(ctx, categoryID, name); err != nil {
		return fmt.Errorf("categories.UpdateCategory: %w", err)
	}

	return nil
}

func requireAdmin(user domain.SessionUser) error {
	if user.Role != domain.RoleAdmin {
		return apperr.New(apperr.KindForbidden, "credentials invalid")
	}
	return nil
}
