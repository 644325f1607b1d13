package engine

import (
	"fmt"
	"strings"

	"github.com/impactrealty/conductor/internal/domain"
)

// ValidateParams проверяет параметры запуска против схемы типа
// workflow из каталога. Проверка выполняется один раз при создании
// запуска: внутри цикла контекст уже считается валидным.
func ValidateParams(workflowType string, params map[string]any) error {
	wt, ok := domain.WorkflowTypes[workflowType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWorkflow, workflowType)
	}

	var missing []string
	for _, key := range wt.RequiredKeys {
		v, present := params[key]
		if !present || v == nil || v == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s requires %s",
			ErrInvalidParams, workflowType, strings.Join(missing, ", "))
	}
	return nil
}
