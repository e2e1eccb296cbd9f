package textfile

import (
	"fmt"

	"github.com/ochairo/filedrecipes/internal/domain/interfaces/repositories"
)

// changeNotifier calls registered handlers synchronously, in registration order
type changeNotifier struct {
	handlers []repositories.RecipesChangedHandler
}

func (n *changeNotifier) subscribe(handler repositories.RecipesChangedHandler) {
	if handler == nil {
		return
	}
	n.handlers = append(n.handlers, handler)
}

// notify stops at the first failing handler
func (n *changeNotifier) notify() error {
	for i, handler := range n.handlers {
		if err := handler(repositories.RecipesChangedEvent{}); err != nil {
			return fmt.Errorf("recipes changed handler %d failed: %w", i, err)
		}
	}
	return nil
}
