package v1

import (
	"fmt"
	"net/http"

	"github.com/duo-finance/backend/internal/httputil"
	"github.com/duo-finance/backend/internal/models"
	"github.com/gin-gonic/gin"
)

// resourceOptionsDetail returns the appropriate response for an HTTP OPTIONS request for a specific resource.
func resourceOptionsDetail[R models.Budget | models.Category | models.CategoryRule | models.Transaction](c *gin.Context, resource R) {
	if !resourceExists(c, resource) {
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// resourceExists checks that the resource with the ID from the URI exists
// and sends the error response if it does not.
//
// Preflight requests carry no user, so only the existence of the resource is checked.
func resourceExists[R models.Budget | models.Category | models.CategoryRule | models.Transaction](c *gin.Context, resource R) bool {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return false
	}

	err = models.DB.Where("id = ?", uri.ID.UUID).First(&resource).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return false
	}

	return true
}

// householdResource returns the resource with the ID from the URI if it
// belongs to the household of the request. Otherwise, the error response
// is sent and the boolean is false.
func householdResource[R models.Budget | models.CategoryRule | models.Transaction](c *gin.Context) (resource R, ok bool) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Where("id = ? AND household_id = ?", uri.ID.UUID, householdID(c)).First(&resource).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	return resource, true
}

// notFound is the error for resources that do not exist for the household
// of the request.
func notFound(name string) error {
	return fmt.Errorf("%w %s matching your query", models.ErrResourceNotFound, name)
}

// deleteResource deletes the resource with the ID from the URI if it
// belongs to the household of the request.
func deleteResource[R models.Budget | models.CategoryRule | models.Transaction](c *gin.Context) (R, bool) {
	resource, ok := householdResource[R](c)
	if !ok {
		return resource, false
	}

	err := models.DB.Unscoped().Delete(&resource).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return resource, false
	}

	c.JSON(http.StatusNoContent, nil)
	return resource, true
}
