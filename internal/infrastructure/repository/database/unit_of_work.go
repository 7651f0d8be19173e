package database

import (
	"context"
	"log/slog"

	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// UnitOfWork runs domain operations inside a single database transaction
type UnitOfWork struct {
	client *Client
	tracer trace.Tracer
	logger *slog.Logger
}

func NewUnitOfWork(client *Client, tracer trace.Tracer, logger *slog.Logger) *UnitOfWork {
	return &UnitOfWork{client: client, tracer: tracer, logger: logger}
}

// Do commits when fn returns nil and rolls back otherwise.
func (u *UnitOfWork) Do(ctx context.Context, fn func(stores domain.Stores) error) error {
	ctx, span := u.tracer.Start(ctx, "UnitOfWork.Do")
	defer span.End()

	err := u.client.WithTx(ctx, func(tx *gorm.DB) error {
		return fn(domain.Stores{
			Products:     NewProductRepository(tx, u.tracer, u.logger),
			Associations: NewAssociationStore(tx, u.tracer, u.logger),
		})
	})
	if err != nil {
		span.RecordError(err)
		u.logger.DebugContext(ctx, "Unit of work rolled back", slog.String("error", err.Error()))
		return domain.WrapStorage(err, "transaction failed")
	}
	return nil
}
