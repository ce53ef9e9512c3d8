// Package pagination строит компактный ряд кнопок страниц: первая, последняя,
// соседи текущей и многоточия между ними.
package pagination

// Виды кнопок
const (
	KindPage     = "page"
	KindEllipsis = "ellipsis"
)

// Button - одна кнопка ряда. Number у многоточия равен 0.
type Button struct {
	Kind    string `json:"kind"`
	Number  int    `json:"number,omitempty"`
	Current bool   `json:"current,omitempty"`
}

func page(n int) Button    { return Button{Kind: KindPage, Number: n} }
func current(n int) Button { return Button{Kind: KindPage, Number: n, Current: true} }
func ellipsis() Button     { return Button{Kind: KindEllipsis} }

// Compute возвращает ряд кнопок для totalPages >= 1 и currentPage в [1, totalPages].
// Значения вне диапазона не исправляются.
func Compute(totalPages, currentPage int) []Button {
	buttons := make([]Button, 0, 7)

	if currentPage != 1 {
		buttons = append(buttons, page(1))
	}
	if currentPage-1 > 2 {
		buttons = append(buttons, ellipsis())
	}
	if currentPage > 2 {
		buttons = append(buttons, page(currentPage-1))
	}

	buttons = append(buttons, current(currentPage))

	if currentPage < totalPages-1 {
		buttons = append(buttons, page(currentPage+1))
	}
	if currentPage < totalPages-2 {
		buttons = append(buttons, ellipsis())
	}
	if currentPage != totalPages {
		buttons = append(buttons, page(totalPages))
	}

	return buttons
}

// TotalPages считает число страниц; пустой список - одна страница.
func TotalPages(totalItems int64, perPage int) int {
	if perPage <= 0 || totalItems <= 0 {
		return 1
	}
	return int((totalItems + int64(perPage) - 1) / int64(perPage))
}

// Window хранит номер текущей страницы и сообщает о его смене.
type Window struct {
	totalPages    int
	currentPage   int
	onPageChanged func(page int)
}

// NewWindow создает окно. initialPage <= 0 означает первую страницу, onPageChanged может быть nil.
func NewWindow(totalPages, initialPage int, onPageChanged func(page int)) *Window {
	if initialPage <= 0 {
		initialPage = 1
	}
	return &Window{
		totalPages:    totalPages,
		currentPage:   initialPage,
		onPageChanged: onPageChanged,
	}
}

// SetPage переключает текущую страницу и вызывает onPageChanged. Клампинга нет.
func (w *Window) SetPage(n int) {
	w.currentPage = n
	if w.onPageChanged != nil {
		w.onPageChanged(n)
	}
}

func (w *Window) CurrentPage() int { return w.currentPage }
func (w *Window) TotalPages() int  { return w.totalPages }

// Buttons пересчитывает ряд целиком для текущего состояния.
func (w *Window) Buttons() []Button {
	return Compute(w.totalPages, w.currentPage)
}
