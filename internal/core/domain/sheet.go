package domain

import "github.com/google/uuid"

// Sheet - табличные данные, прочитанные из CSV или XLSX.
type Sheet struct {
	Header []string
	Rows   [][]string
}

// ImportRowError - ошибки одной строки импорта (номер строки считается с 1 без заголовка).
type ImportRowError struct {
	Row    int
	Fields ValidationErrors
	Reason string
}

// ImportReport - итог импорта.
type ImportReport struct {
	FileName        string
	TotalRows       int
	Imported        int
	CreatedIDs      []int64
	Errors          []ImportRowError
	UnmappedColumns []string
}

// ImportRequest - параметры импорта, пришедшие вместе с файлом.
// Mapping: заголовок колонки -> имя поля (ключи сравниваются без учета регистра).
type ImportRequest struct {
	FileName       string
	Mapping        map[string]string
	PropertiesType string
	UserID         *uuid.UUID
}
