package whisper

// ModelInfo описывает модель Whisper, которую может загрузить сервер.
type ModelInfo struct {
	ID   string
	Name string
}

// Models - модели, доступные для выбора в настройках.
var Models = []ModelInfo{
	{ID: "tiny", Name: "Tiny (Fastest)"},
	{ID: "base", Name: "Base (Balanced)"},
	{ID: "small", Name: "Small (Better)"},
	{ID: "medium", Name: "Medium (Good)"},
	{ID: "large", Name: "Large (Best)"},
}

// GetModel возвращает модель по ID.
func GetModel(id string) (ModelInfo, bool) {
	for _, m := range Models {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}
