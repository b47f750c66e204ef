package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/circleci/mongoprofiler/example/books"
)

var validate = validator.New()

type bookResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Price string    `json:"price"`
}

type bookRequest struct {
	Name  string `json:"name" validate:"required"`
	Price string `json:"price" validate:"required"`
}

// storeError writes the response for a store error.
func storeError(c *gin.Context, err error) {
	if errors.Is(err, books.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{})
		return
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{})
}

func bookID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{})
		return uuid.Nil, false
	}
	return id, true
}

func bindBook(c *gin.Context) (bookRequest, bool) {
	var req bookRequest
	err := c.BindJSON(&req)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{})
		return req, false
	}

	err = validate.Struct(req)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{})
		return req, false
	}
	return req, true
}

func (a *API) getBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	book, err := a.store.ByID(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookResponse(*book))
}

func (a *API) listBooks(c *gin.Context) {
	list, err := a.store.List(c.Request.Context())
	if err != nil {
		storeError(c, err)
		return
	}

	res := make([]bookResponse, 0, len(list))
	for _, b := range list {
		res = append(res, bookResponse(b))
	}
	c.JSON(http.StatusOK, res)
}

func (a *API) postBook(c *gin.Context) {
	type response struct {
		ID uuid.UUID `json:"id"`
	}

	req, ok := bindBook(c)
	if !ok {
		return
	}

	id, err := a.store.Add(c.Request.Context(), books.ToAdd(req))
	if err != nil {
		storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response{
		ID: id,
	})
}

func (a *API) putBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	req, ok := bindBook(c)
	if !ok {
		return
	}

	book := books.Book{ID: id, Name: req.Name, Price: req.Price}
	err := a.store.Replace(c.Request.Context(), book)
	if err != nil {
		storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookResponse(book))
}

func (a *API) patchPrice(c *gin.Context) {
	type request struct {
		Price string `json:"price" validate:"required"`
	}

	id, ok := bookID(c)
	if !ok {
		return
	}

	var req request
	if err := c.BindJSON(&req); err != nil || validate.Struct(req) != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{})
		return
	}

	book, err := a.store.SetPrice(c.Request.Context(), id, req.Price)
	if err != nil {
		storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookResponse(*book))
}

func (a *API) deleteBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}

	book, err := a.store.Remove(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookResponse(*book))
}
