package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/MikeMC777/farm-market/internal/cart"
	prod "github.com/MikeMC777/farm-market/internal/product"
)

// CartResponse is the view of one session's cart.
// swagger:model CartResponse
type CartResponse struct {
	ID           string      `json:"id"`
	Lines        []cart.Line `json:"lines"`
	ItemCount    int         `json:"item_count"`
	TotalPrice   string      `json:"total_price" example:"25.00"`
	DisplayTotal string      `json:"display_total" example:"R25.00"`
}

// AddCartItemRequest adds quantity (default 1) of a product. The quantity is
// clamped to the stock not already in the cart.
// swagger:model AddCartItemRequest
type AddCartItemRequest struct {
	ProductID int64 `json:"product_id" example:"1"`
	Quantity  *int  `json:"quantity"   example:"2"`
}

// SetQuantityRequest overwrites a line's quantity; 0 or less removes it.
// swagger:model SetQuantityRequest
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" example:"3"`
}

type cartAPI struct {
	repo     prod.Repository
	sessions *cart.SessionStore
	currency string
}

func (a *cartAPI) render(c *gin.Context, status int, sess *cart.Session, crt cart.Cart) {
	t := crt.Totals()
	c.JSON(status, CartResponse{
		ID:           sess.ID,
		Lines:        crt.Lines(),
		ItemCount:    t.ItemCount,
		TotalPrice:   t.TotalPrice.StringFixed(2),
		DisplayTotal: cart.FormatPrice(a.currency, t.TotalPrice),
	})
}

func (a *cartAPI) session(c *gin.Context) (*cart.Session, bool) {
	sess, ok := a.sessions.Get(c.Param("sid"))
	if !ok {
		c.JSON(http.StatusNotFound, prod.HTTPError{Error: "Cart session not found"})
		return nil, false
	}
	return sess, true
}

// startCart godoc
// @Summary  Start a browsing session with an empty cart
// @Tags     cart
// @Produce  json
// @Success  201 {object} CartResponse
// @Router   /cart [post]
func (a *cartAPI) startCart(c *gin.Context) {
	sess := a.sessions.Start()
	a.render(c, http.StatusCreated, sess, sess.Cart())
}

// viewCart godoc
// @Summary  View a cart
// @Tags     cart
// @Produce  json
// @Param    sid path string true "session id"
// @Success  200 {object} CartResponse
// @Failure  404 {object} prod.HTTPError
// @Router   /cart/{sid} [get]
func (a *cartAPI) viewCart(c *gin.Context) {
	sess, ok := a.session(c)
	if !ok {
		return
	}
	a.render(c, http.StatusOK, sess, sess.Cart())
}

// addItem godoc
// @Summary  Add a product to the cart
// @Description The quantity is clamped to [1, stock not yet in the cart]; 400 when none is left.
// @Tags     cart
// @Accept   json
// @Produce  json
// @Param    sid  path string             true "session id"
// @Param    body body AddCartItemRequest true "item"
// @Success  200 {object} CartResponse
// @Failure  400 {object} prod.HTTPError
// @Failure  404 {object} prod.HTTPError
// @Router   /cart/{sid}/items [post]
func (a *cartAPI) addItem(c *gin.Context) {
	sess, ok := a.session(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, prod.HTTPError{Error: "Invalid JSON body"})
		return
	}
	if req.ProductID <= 0 {
		writeError(c, prod.ErrNotFound, "")
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	p, err := a.repo.GetByID(c.Request.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, prod.ErrNotFound) {
			writeError(c, err, "")
			return
		}
		writeError(c, err, "Failed to fetch product")
		return
	}
	inCart := 0
	if l, ok := sess.Cart().Line(p.ID); ok {
		inCart = l.Quantity
	}
	left := p.StockQuantity - inCart
	if left <= 0 {
		c.JSON(http.StatusBadRequest, prod.HTTPError{Error: "Not enough stock"})
		return
	}
	qty = prod.ClampQuantity(qty, left)

	crt := sess.Add(cart.Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Unit:      p.Unit,
		ImageURL:  prod.ImageFor(p.Name),
	}, qty)
	a.render(c, http.StatusOK, sess, crt)
}

// setQuantity godoc
// @Summary  Set the quantity of a cart line
// @Tags     cart
// @Accept   json
// @Produce  json
// @Param    sid  path string             true "session id"
// @Param    pid  path int                true "product id"
// @Param    body body SetQuantityRequest true "quantity"
// @Success  200 {object} CartResponse
// @Failure  400 {object} prod.HTTPError
// @Failure  404 {object} prod.HTTPError
// @Router   /cart/{sid}/items/{pid} [put]
func (a *cartAPI) setQuantity(c *gin.Context) {
	sess, ok := a.session(c)
	if !ok {
		return
	}
	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		c.JSON(http.StatusBadRequest, prod.HTTPError{Error: "quantity is required"})
		return
	}
	pid, ok := parseID(c, "pid")
	if !ok {
		a.render(c, http.StatusOK, sess, sess.Cart())
		return
	}
	a.render(c, http.StatusOK, sess, sess.SetQuantity(pid, *req.Quantity))
}

// removeItem godoc
// @Summary  Remove a product from the cart
// @Tags     cart
// @Produce  json
// @Param    sid path string true "session id"
// @Param    pid path int    true "product id"
// @Success  200 {object} CartResponse
// @Failure  404 {object} prod.HTTPError
// @Router   /cart/{sid}/items/{pid} [delete]
func (a *cartAPI) removeItem(c *gin.Context) {
	sess, ok := a.session(c)
	if !ok {
		return
	}
	pid, ok := parseID(c, "pid")
	if !ok {
		a.render(c, http.StatusOK, sess, sess.Cart())
		return
	}
	a.render(c, http.StatusOK, sess, sess.Remove(pid))
}

// endCart godoc
// @Summary  End a browsing session and discard its cart
// @Tags     cart
// @Produce  json
// @Param    sid path string true "session id"
// @Success  200 {object} prod.MessageResponse
// @Failure  404 {object} prod.HTTPError
// @Router   /cart/{sid} [delete]
func (a *cartAPI) endCart(c *gin.Context) {
	if !a.sessions.End(c.Param("sid")) {
		c.JSON(http.StatusNotFound, prod.HTTPError{Error: "Cart session not found"})
		return
	}
	c.JSON(http.StatusOK, prod.MessageResponse{Message: "Cart discarded"})
}
