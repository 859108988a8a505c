package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zenshift/zenshift-backend/internal/models"
)

// listQuery собирает WHERE/ORDER BY/LIMIT часть запроса списка по контракту
// ListFilter. Ключи фильтров и значения сортировки берутся только из
// белых списков ресурса, всё незнакомое молча игнорируется.
func listQuery(filter models.ListFilter, allowedFilters, allowedSorts map[string]string, defaultSort string) (string, []any) {
	var conditions []string
	var args []any

	for key, column := range allowedFilters {
		if value, ok := filter.Filters[key]; ok && value != "" {
			args = append(args, value)
			conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}

	var sb strings.Builder
	if len(conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}

	orderBy := defaultSort
	if column, ok := allowedSorts[filter.SortBy]; ok {
		orderBy = column
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(orderBy)

	args = append(args, filter.Limit)
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	args = append(args, filter.Offset())
	sb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))

	return sb.String(), args
}

// whereClause возвращает только WHERE часть для count-запроса.
func whereClause(filter models.ListFilter, allowedFilters map[string]string) (string, []any) {
	var conditions []string
	var args []any

	for key, column := range allowedFilters {
		if value, ok := filter.Filters[key]; ok && value != "" {
			args = append(args, value)
			conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// marshalJSON сериализует значение для записи в jsonb-колонку.
// nil сериализуется как SQL NULL.
func marshalJSON(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func unmarshalJSON(data []byte, target any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}
