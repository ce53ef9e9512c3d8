// Package schemas хранит JSON-схемы событий, которыми обмениваются сервисы портала.
package schemas

import "embed"

//go:embed events
var SchemasFS embed.FS
