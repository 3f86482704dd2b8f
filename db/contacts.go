package db

import (
	"context"

	"recipebox/errs"
	"recipebox/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type ContactStoreMongo struct {
	coll *mongo.Collection
}

func NewContactStore(coll *mongo.Collection) *ContactStoreMongo {
	return &ContactStoreMongo{coll: coll}
}

func (s *ContactStoreMongo) CreateContact(ctx context.Context, msg *models.ContactMessage) error {
	_, err := s.coll.InsertOne(ctx, msg)
	return errs.Store("create contact message", err)
}
