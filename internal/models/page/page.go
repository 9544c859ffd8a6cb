package page

import "math"

const DefaultSize = 20
const MaxSize = 100

// Request - смещение и размер страницы
type Request struct {
	Offset int
	Limit  int
}

// Of переводит номер страницы (с единицы) и размер в смещение.
// Смещение за пределами int насыщается до math.MaxInt, такая страница всегда пуста.
func Of(number, size int) Request {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	if number-1 > math.MaxInt/size {
		return Request{Offset: math.MaxInt, Limit: size}
	}
	return Request{Offset: (number - 1) * size, Limit: size}
}

// Bounds возвращает границы среза длины n для страницы
func (r Request) Bounds(n int) (int, int) {
	start := r.Offset
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end := n
	if r.Limit >= 0 && start+r.Limit < n {
		end = start + r.Limit
	}
	return start, end
}
