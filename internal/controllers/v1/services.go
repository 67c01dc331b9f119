package v1

import (
	"time"

	"github.com/duo-finance/backend/internal/categorize"
	"github.com/duo-finance/backend/internal/models"
	"github.com/duo-finance/backend/internal/monitor"
)

// Services are the collaborators of the handlers besides the database.
// The zero value runs no side effects and categorizes with rules only.
type Services struct {
	Dispatcher *monitor.Dispatcher
	AI         *categorize.AI
	Now        func() time.Time
}

var services Services

// Configure sets the services used by all handlers.
func Configure(s Services) {
	services = s
}

func now() time.Time {
	if services.Now != nil {
		return services.Now()
	}

	return time.Now()
}

func categorizer() categorize.Service {
	return categorize.Service{
		DB: models.DB,
		AI: services.AI,
	}
}
