package models

// ListFilter описывает контракт пагинации, сортировки и фильтрации списков.
// Какие ключи Filters и значения SortBy допустимы — решает репозиторий ресурса.
type ListFilter struct {
	Page    int
	Limit   int
	SortBy  string
	Filters map[string]string
}

// Normalize выставляет значения пагинации по умолчанию.
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

// Offset возвращает смещение для SQL-запроса.
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}
