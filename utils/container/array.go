package container

import "slices"

// IIncrementalItem 支持增量更新的元素接口
// 功能：元素记录自己在数组中的位置，删除时无需查找
type IIncrementalItem interface {
	Index() int         // 获取元素的索引
	SetIndex(index int) // 设置元素的索引
}

// IncrementalItemBase 增量元素基类，可嵌入结构体中实现IIncrementalItem
type IncrementalItemBase struct {
	index int
}

// Index 获取元素的索引
func (b *IncrementalItemBase) Index() int {
	return b.index
}

// SetIndex 设置元素的索引
func (b *IncrementalItemBase) SetIndex(index int) {
	b.index = index
}

// IncrementalArray 增量数组
// 功能：Add/Remove只登记操作，等到Prepare时统一生效，保证一帧之内遍历到的集合不变
// 说明：删除采用与末尾元素交换的方式，不保证元素顺序
type IncrementalArray[T IIncrementalItem] struct {
	data    []T
	add     []T
	remove  []T
	removed map[int]struct{} // 已登记删除的索引，用于去重
}

// NewIncrementalArray 创建增量数组
func NewIncrementalArray[T IIncrementalItem]() *IncrementalArray[T] {
	return &IncrementalArray[T]{
		data:    make([]T, 0),
		add:     make([]T, 0),
		remove:  make([]T, 0),
		removed: make(map[int]struct{}),
	}
}

// Len 获取当前数组长度（不含待处理操作）
func (a *IncrementalArray[T]) Len() int {
	return len(a.data)
}

// Data 获取当前生效的数据
// 说明：返回内部切片，调用方不得修改
func (a *IncrementalArray[T]) Data() []T {
	return a.data
}

// Pending 待添加与待删除的元素数量
func (a *IncrementalArray[T]) Pending() (adds, removes int) {
	return len(a.add), len(a.remove)
}

// Add 增加元素（等到Prepare时才会真正增加）
func (a *IncrementalArray[T]) Add(value T) {
	a.add = append(a.add, value)
}

// Remove 删除元素（等到Prepare时才会真正删除）
// 说明：同一元素在一次Prepare之前重复删除只生效一次
func (a *IncrementalArray[T]) Remove(value T) {
	ind := value.Index()
	if ind < 0 || ind >= len(a.data) {
		log.Panicf("remove item with bad index %d (len=%d)", ind, len(a.data))
	}
	if _, ok := a.removed[ind]; ok {
		return
	}
	a.removed[ind] = struct{}{}
	a.remove = append(a.remove, value)
}

// Prepare 执行增量操作
// 算法说明：
// 1. 按索引从大到小处理删除，每次用末尾元素填补空位，避免搬动尚未处理的待删元素
// 2. 将新增元素追加到末尾并设置索引
// 3. 清空待处理列表
func (a *IncrementalArray[T]) Prepare() {
	if len(a.remove) > 0 {
		indices := make([]int, 0, len(a.remove))
		for ind := range a.removed {
			indices = append(indices, ind)
		}
		slices.SortFunc(indices, func(x, y int) int { return y - x })
		for _, ind := range indices {
			last := len(a.data) - 1
			if ind != last {
				a.data[ind] = a.data[last]
				a.data[ind].SetIndex(ind)
			}
			var zero T
			a.data[last] = zero
			a.data = a.data[:last]
		}
	}
	for _, x := range a.add {
		x.SetIndex(len(a.data))
		a.data = append(a.data, x)
	}
	a.add = a.add[:0]
	a.remove = a.remove[:0]
	clear(a.removed)
}
