package handler

import (
	"errors"
	"net/http"

	"github.com/IagoMorais/sistema-venda/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewFieldErrors(fields))
		return false
	}
	return true
}

// respondError maps workflow errors to HTTP statuses by type, never by
// message text. Unknown errors become an opaque 500.
func respondError(c *gin.Context, err error) {
	var (
		validation   *apierror.ValidationError
		notFound     *apierror.NotFoundError
		noStock      *apierror.InsufficientStockError
		invalidState *apierror.InvalidStateError
		precheckout  *apierror.PrecheckoutError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, apierror.New(validation.Message))
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, apierror.New(notFound.Message))
	case errors.As(err, &noStock):
		c.JSON(http.StatusConflict, apierror.New(noStock.Error()))
	case errors.As(err, &invalidState):
		c.JSON(http.StatusConflict, apierror.New(invalidState.Message))
	case errors.As(err, &precheckout):
		c.JSON(http.StatusConflict, apierror.New(precheckout.Message))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Erro interno do servidor"))
	}
}
