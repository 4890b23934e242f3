package mongorepo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/product_api/internal/models"
	"github.com/Skotchmaster/product_api/internal/repo"
)

// productDocument stores price as Decimal128 so amounts survive without float drift.
type productDocument struct {
	ID          string               `bson:"_id"`
	Name        string               `bson:"product_name"`
	Description string               `bson:"product_description"`
	Price       primitive.Decimal128 `bson:"price"`
	Tags        []string             `bson:"product_tag"`
	CreatedBy   string               `bson:"createdBy"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

func toDecimal(v float64) (primitive.Decimal128, error) {
	d, err := primitive.ParseDecimal128(strconv.FormatFloat(v, 'f', -1, 64))
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("price %v: %w", v, err)
	}
	return d, nil
}

func fromDecimal(d primitive.Decimal128) float64 {
	f, err := strconv.ParseFloat(d.String(), 64)
	if err != nil {
		return 0
	}
	return f
}

func toDocument(p *models.Product) (productDocument, error) {
	price, err := toDecimal(p.Price)
	if err != nil {
		return productDocument{}, err
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return productDocument{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Tags:        tags,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func (d productDocument) model() models.Product {
	return models.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       fromDecimal(d.Price),
		Tags:        d.Tags,
		CreatedBy:   d.CreatedBy,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (r *Repo) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Tags == nil {
		p.Tags = []string{}
	}

	doc, err := toDocument(p)
	if err != nil {
		return err
	}
	_, err = r.Products.InsertOne(ctx, doc)
	return translate(err)
}

func (r *Repo) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var doc productDocument
	if err := r.Products.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	p := doc.model()
	return &p, nil
}

func (r *Repo) ListProducts(ctx context.Context, f repo.ProductFilter) (int64, []models.Product, error) {
	filter := bson.M{}
	if f.CreatedBy != "" {
		filter["createdBy"] = f.CreatedBy
	}

	total, err := r.Products.CountDocuments(ctx, filter)
	if err != nil {
		return 0, nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(f.Offset))
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	cur, err := r.Products.Find(ctx, filter, opts)
	if err != nil {
		return 0, nil, err
	}
	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.model())
	}
	return total, items, nil
}

func (r *Repo) SaveProduct(ctx context.Context, p *models.Product) error {
	price, err := toDecimal(p.Price)
	if err != nil {
		return err
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	p.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	res, err := r.Products.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": bson.M{
		"product_name":        p.Name,
		"product_description": p.Description,
		"price":               price,
		"product_tag":         tags,
		"updatedAt":           p.UpdatedAt,
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.Products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}
