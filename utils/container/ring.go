package container

// Ring 定长环形队列
// 功能：按插入顺序保存最近的至多Cap个元素，超过容量时淘汰最旧元素
// 说明：用于车辆轨迹，At(0)为最旧元素，At(Len()-1)为最新元素
type Ring[T any] struct {
	data  []T // 底层存储，长度即容量
	start int // 最旧元素所在位置
	size  int // 当前元素数量
}

// NewRing 创建指定容量的环形队列
// 参数：capacity-容量，小于1时按1处理
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{data: make([]T, capacity)}
}

// Cap 容量
func (r *Ring[T]) Cap() int {
	return len(r.data)
}

// Len 当前元素数量
func (r *Ring[T]) Len() int {
	return r.size
}

// Push 追加元素，队列已满时淘汰最旧元素
// 返回：被淘汰的元素与是否发生淘汰
func (r *Ring[T]) Push(v T) (evicted T, ok bool) {
	if r.size < len(r.data) {
		r.data[(r.start+r.size)%len(r.data)] = v
		r.size++
		return
	}
	evicted, ok = r.data[r.start], true
	r.data[r.start] = v
	r.start = (r.start + 1) % len(r.data)
	return
}

// At 按从旧到新的顺序访问第i个元素，越界时panic
func (r *Ring[T]) At(i int) T {
	if i < 0 || i >= r.size {
		log.Panicf("ring index %d out of range [0, %d)", i, r.size)
	}
	return r.data[(r.start+i)%len(r.data)]
}

// Last 最新元素
func (r *Ring[T]) Last() (v T, ok bool) {
	if r.size == 0 {
		return
	}
	return r.At(r.size - 1), true
}

// Clear 清空（保留容量）
func (r *Ring[T]) Clear() {
	var zero T
	for i := range r.data {
		r.data[i] = zero
	}
	r.start, r.size = 0, 0
}

// Each 从旧到新遍历，f返回false时停止
func (r *Ring[T]) Each(f func(i int, v T) bool) {
	for i := 0; i < r.size; i++ {
		if !f(i, r.data[(r.start+i)%len(r.data)]) {
			return
		}
	}
}

// Slice 按从旧到新的顺序复制出全部元素
func (r *Ring[T]) Slice() []T {
	out := make([]T, 0, r.size)
	r.Each(func(_ int, v T) bool {
		out = append(out, v)
		return true
	})
	return out
}
