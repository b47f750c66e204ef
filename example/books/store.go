// Package books is a mongo backed store of books.
package books

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/circleci/mongoprofiler/mongoex"
	"github.com/circleci/mongoprofiler/o11y"
)

const collectionName = "books"

var (
	ErrNotFound = o11y.NewWarning("no update or results")
)

type Store struct {
	books *mongoex.Collection
}

func NewStore(db *mongoex.Database) *Store {
	return &Store{
		books: db.Collection(collectionName),
	}
}

func mapError(err error, to error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return to
	}
	return err
}

type Book struct {
	ID    uuid.UUID
	Name  string
	Price string
}

// document is how a book is stored, the id is kept as its string form.
type document struct {
	ID    string `bson:"_id"`
	Name  string `bson:"name"`
	Price string `bson:"price"`
}

func (d document) book() (*Book, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	return &Book{
		ID:    id,
		Name:  d.Name,
		Price: d.Price,
	}, nil
}

func (s *Store) ByID(ctx context.Context, id uuid.UUID) (book *Book, err error) {
	ctx, span := o11y.StartSpan(ctx, "store: by_id")
	defer o11y.End(span, &err)
	span.AddField("id", id)

	var doc document
	err = s.books.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		return nil, mapError(err, ErrNotFound)
	}
	return doc.book()
}

// List returns the books in name order.
func (s *Store) List(ctx context.Context) (books []Book, err error) {
	ctx, span := o11y.StartSpan(ctx, "store: list")
	defer o11y.End(span, &err)

	cur, err := s.books.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}

	var docs []document
	err = cur.All(ctx, &docs)
	if err != nil {
		return nil, err
	}

	books = make([]Book, 0, len(docs))
	for _, d := range docs {
		b, err := d.book()
		if err != nil {
			return nil, err
		}
		books = append(books, *b)
	}
	span.AddField("count", len(books))
	return books, nil
}

type ToAdd struct {
	Name  string
	Price string
}

func (s *Store) Add(ctx context.Context, toAdd ToAdd) (id uuid.UUID, err error) {
	ctx, span := o11y.StartSpan(ctx, "store: add")
	defer o11y.End(span, &err)
	span.AddField("name", toAdd.Name)

	id = uuid.New()
	_, err = s.books.InsertOne(ctx, document{
		ID:    id.String(),
		Name:  toAdd.Name,
		Price: toAdd.Price,
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// SetPrice updates the price of a book, returning the updated book.
func (s *Store) SetPrice(ctx context.Context, id uuid.UUID, price string) (book *Book, err error) {
	ctx, span := o11y.StartSpan(ctx, "store: set_price")
	defer o11y.End(span, &err)
	span.AddField("id", id)

	var doc document
	err = s.books.FindOneAndUpdate(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": bson.M{"price": price}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, mapError(err, ErrNotFound)
	}
	return doc.book()
}

// Replace overwrites the name and price of an existing book.
func (s *Store) Replace(ctx context.Context, book Book) (err error) {
	ctx, span := o11y.StartSpan(ctx, "store: replace")
	defer o11y.End(span, &err)
	span.AddField("id", book.ID)

	res, err := s.books.ReplaceOne(ctx, bson.M{"_id": book.ID.String()}, document{
		ID:    book.ID.String(),
		Name:  book.Name,
		Price: book.Price,
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := o11y.StartSpan(ctx, "store: delete")
	defer o11y.End(span, &err)
	span.AddField("id", id)

	res, err := s.books.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Remove deletes a book, returning what was removed.
func (s *Store) Remove(ctx context.Context, id uuid.UUID) (book *Book, err error) {
	ctx, span := o11y.StartSpan(ctx, "store: remove")
	defer o11y.End(span, &err)
	span.AddField("id", id)

	var doc document
	err = s.books.FindOneAndDelete(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		return nil, mapError(err, ErrNotFound)
	}
	return doc.book()
}

// DeleteAll removes every book, returning how many there were.
func (s *Store) DeleteAll(ctx context.Context) (n int64, err error) {
	ctx, span := o11y.StartSpan(ctx, "store: delete_all")
	defer o11y.End(span, &err)

	res, err := s.books.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, err
	}
	span.AddField("count", res.DeletedCount)
	return res.DeletedCount, nil
}
