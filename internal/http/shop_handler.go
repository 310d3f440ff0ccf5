package http

import (
	"encoding/json"
	"net/http"

	"bookshop/internal/book"
	"bookshop/internal/shop"
)

// ShopHandler serves catalog search, basket operations and purchase.
type ShopHandler struct {
	shop *shop.Shop
}

func NewShopHandler(s *shop.Shop) *ShopHandler {
	return &ShopHandler{shop: s}
}

func (h *ShopHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	books := h.shop.Search(r.Context(), SessionFrom(r), query)
	if books == nil {
		books = []book.Book{}
	}
	JSONSuccess(w, map[string]any{"books": books})
}

type basketItemReq struct {
	Title    string `json:"title" validate:"required"`
	Author   string `json:"author" validate:"required"`
	Price    string `json:"price" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

func (req basketItemReq) book() (book.Book, error) {
	price, err := book.ParsePrice(req.Price)
	if err != nil {
		return book.Book{}, err
	}
	return book.New(req.Title, req.Author, price), nil
}

func (h *ShopHandler) AddToBasket(w http.ResponseWriter, r *http.Request) {
	h.mutateBasket(w, r, h.shop.AddToBasket)
}

func (h *ShopHandler) RemoveFromBasket(w http.ResponseWriter, r *http.Request) {
	h.mutateBasket(w, r, h.shop.RemoveFromBasket)
}

func (h *ShopHandler) mutateBasket(w http.ResponseWriter, r *http.Request, op func(*shop.Session, book.Book, int) bool) {
	var req basketItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if details := ValidateStruct(req); len(details) > 0 {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	b, err := req.book()
	if err != nil {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid price", nil)
		return
	}

	sess := SessionFrom(r)
	if !op(sess, b, req.Quantity) {
		JSONError(w, http.StatusConflict, "REJECTED", "Basket operation failed", nil)
		return
	}
	h.writeBasket(w, sess)
}

func (h *ShopHandler) ViewBasket(w http.ResponseWriter, r *http.Request) {
	h.writeBasket(w, SessionFrom(r))
}

func (h *ShopHandler) writeBasket(w http.ResponseWriter, sess *shop.Session) {
	bk := h.shop.ViewBasket(sess)
	if bk == nil {
		JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}
	JSONSuccess(w, map[string]any{
		"items": bk.Items(),
		"total": bk.Total(),
	})
}

// Purchase buys the basket as it stands: every unit of every line item, in
// basket order, one catalog removal per unit.
func (h *ShopHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r)
	bk := h.shop.ViewBasket(sess)
	if bk == nil {
		JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	var books []book.Book
	for _, item := range bk.Items() {
		for i := 0; i < item.Quantity; i++ {
			books = append(books, item.Book)
		}
	}

	statuses := h.shop.Purchase(r.Context(), sess, books...)

	results := make([]map[string]any, len(statuses))
	for i, status := range statuses {
		results[i] = map[string]any{
			"book":   books[i],
			"status": status.String(),
		}
	}
	JSONSuccess(w, map[string]any{"results": results})
}

type addBookReq struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	Price  string `json:"price" validate:"required"`
}

func (h *ShopHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	var req addBookReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if details := ValidateStruct(req); len(details) > 0 {
		JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	if !h.shop.AddBook(r.Context(), req.Title, req.Author, req.Price) {
		JSONError(w, http.StatusUnprocessableEntity, "REJECTED", "Could not add book", nil)
		return
	}
	JSONSuccessCreated(w, map[string]any{
		"title":  req.Title,
		"author": req.Author,
	})
}
