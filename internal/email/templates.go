package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

// Встроенные шаблоны писем. Загружаются при создании менеджера,
// внешняя директория с шаблонами не требуется.
var builtinTemplates = map[string]string{
	"verification": `<html><body>
<h2>Подтверждение email</h2>
<p>Ваш код подтверждения: <b>{{.Code}}</b></p>
<p>Если вы не регистрировались, просто проигнорируйте это письмо.</p>
</body></html>`,
	"photo_rejected": `<html><body>
<h2>Фото не прошло модерацию</h2>
<p>Причина: {{.Reason}}</p>
<p>Вы можете загрузить другое фото в своем профиле.</p>
</body></html>`,
}

// TemplateManager реализует TemplateRenderer для управления шаблонами email
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager создает новый менеджер шаблонов со встроенными шаблонами
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{
		templates: make(map[string]*template.Template),
	}
	for name, tpl := range builtinTemplates {
		_ = tm.AddTemplate(name, tpl)
	}
	return tm
}

// Render рендерит шаблон с данными
func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// AddTemplate добавляет шаблон в менеджер
func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()

	return nil
}
