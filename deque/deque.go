/**
 *
 * 利用数组实现双端队列，用作 flood fill 的前沿队列
 * 数组具有更好的局部性，体素数量很大时比链表更快
 *
 */

package deque

import "ductflow/model"

type Deque interface {
	// 队列的长度
	Size() int

	// 获取队列中对应下标的元素
	Get(i int) model.Coord

	// 正向遍历
	Traverse(f func(i int, c model.Coord))

	// 在队列结尾增加一个元素
	AddLast(c model.Coord)

	// 在队列结尾删除一个元素
	RemoveLast() model.Coord

	// 在队列头部增加一个元素
	AddFirst(c model.Coord)

	// 在队列头部删除一个元素
	RemoveFirst() model.Coord

	// 清空，保留容量
	Clear()

	IsEmpty() bool
}
