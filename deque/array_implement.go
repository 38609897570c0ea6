package deque

import (
	"ductflow/model"
)

const (
	// 数组大小基数
	base = 8
)

var _ Deque = (*ArrDeque)(nil)

// ArrDeque 环形数组双端队列，满了以后容量翻倍
type ArrDeque struct {
	arr []model.Coord

	// 头部元素下标
	head int
	// 元素个数
	size int
}

// 工厂方法
func NewArrDeque(capacity int) *ArrDeque {
	if capacity < base {
		capacity = base
	}
	remainder := capacity % base
	if remainder != 0 {
		capacity = capacity - remainder + base
	}
	return &ArrDeque{
		arr: make([]model.Coord, capacity),
	}
}

func (ad *ArrDeque) Size() int {
	return ad.size
}

func (ad *ArrDeque) Cap() int {
	return len(ad.arr)
}

func (ad *ArrDeque) IsEmpty() bool {
	return ad.size == 0
}

func (ad *ArrDeque) index(i int) int {
	return (ad.head + i) % len(ad.arr)
}

func (ad *ArrDeque) Get(i int) model.Coord {
	if i < 0 || i >= ad.size {
		panic("index out of length")
	}
	return ad.arr[ad.index(i)]
}

func (ad *ArrDeque) Traverse(f func(i int, c model.Coord)) {
	for i := 0; i < ad.size; i++ {
		f(i, ad.arr[ad.index(i)])
	}
}

func (ad *ArrDeque) AddLast(c model.Coord) {
	ad.grow()
	ad.arr[ad.index(ad.size)] = c
	ad.size++
}

func (ad *ArrDeque) AddFirst(c model.Coord) {
	ad.grow()
	ad.head = (ad.head - 1 + len(ad.arr)) % len(ad.arr)
	ad.arr[ad.head] = c
	ad.size++
}

func (ad *ArrDeque) RemoveFirst() model.Coord {
	if ad.size == 0 {
		panic("remove from empty deque")
	}
	c := ad.arr[ad.head]
	ad.head = (ad.head + 1) % len(ad.arr)
	ad.size--
	return c
}

func (ad *ArrDeque) RemoveLast() model.Coord {
	if ad.size == 0 {
		panic("remove from empty deque")
	}
	ad.size--
	return ad.arr[ad.index(ad.size)]
}

func (ad *ArrDeque) Clear() {
	ad.head = 0
	ad.size = 0
}

// 容量不足时翻倍，并把元素按顺序搬到新数组头部
func (ad *ArrDeque) grow() {
	if ad.size < len(ad.arr) {
		return
	}
	arr := make([]model.Coord, len(ad.arr)*2)
	for i := 0; i < ad.size; i++ {
		arr[i] = ad.arr[ad.index(i)]
	}
	ad.arr = arr
	ad.head = 0
}
