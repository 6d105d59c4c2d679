package infrastructure

import (
	"solotto/application"
	"solotto/database"
	"solotto/domain/interfaces"
	"solotto/repository"
)

// UnitOfWorkFactoryWrapper wraps the repository UnitOfWorkFactory to provide
// each unit of work with its own transactional publisher
type UnitOfWorkFactoryWrapper struct {
	repoFactory interface {
		CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork
	}
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactoryWrapper creates a new wrapper that implements application.UnitOfWorkFactory
func NewUnitOfWorkFactoryWrapper(db *database.DB, eventPublisher interfaces.EventPublisher) application.UnitOfWorkFactory {
	repoFactory := repository.NewUnitOfWorkFactory(db)
	return &UnitOfWorkFactoryWrapper{
		repoFactory:    repoFactory,
		eventPublisher: eventPublisher,
	}
}

// Create creates a new UnitOfWork with a transactional event publisher
func (w *UnitOfWorkFactoryWrapper) Create() application.UnitOfWork {
	transactionalPublisher := NewNATSTransactionalPublisher(w.eventPublisher)
	return w.repoFactory.CreateWithPublisher(transactionalPublisher)
}
