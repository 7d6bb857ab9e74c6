/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-17 19:21:08
 * @FilePath: \shiftcash-bot\backend\internal\domain\identity\identity.go
 * @LastEditTime: 2025-10-17 19:21:13
 */
package identity

// Role 表示调用者在本系统中的角色，仅由静态白名单推导。
type Role string

const (
	// RoleManager 表示店长/管理员，可以查看与重置当日数据。
	RoleManager Role = "manager"
	// RoleEmployee 表示一线员工，只能录入当班流水。
	RoleEmployee Role = "employee"
	// RoleUnauthorized 表示不在任何白名单内的调用者。
	RoleUnauthorized Role = "unauthorized"
)

// Classifier 依据启动时加载的两份 ID 白名单判定角色。
// 白名单加载后不可变，进程生命周期内没有任何运行期修改入口。
type Classifier struct {
	managers    map[int64]struct{}
	employees   map[int64]struct{}
	managerList []int64
}

// NewClassifier 用管理员与员工 ID 列表构造分类器，重复 ID 会被去重。
func NewClassifier(managerIDs, employeeIDs []int64) *Classifier {
	c := &Classifier{
		managers:  make(map[int64]struct{}, len(managerIDs)),
		employees: make(map[int64]struct{}, len(employeeIDs)),
	}
	for _, id := range managerIDs {
		if _, ok := c.managers[id]; ok {
			continue
		}
		c.managers[id] = struct{}{}
		c.managerList = append(c.managerList, id)
	}
	for _, id := range employeeIDs {
		c.employees[id] = struct{}{}
	}
	return c
}

// Classify 返回调用者角色。纯函数，对任何输入都有定义。
// 同一 ID 同时出现在两份名单中属于配置错误，此时按 Manager 处理：
// 这是一个对运维公开的显式策略，而不是实现上的巧合。
func (c *Classifier) Classify(id int64) Role {
	if c == nil {
		return RoleUnauthorized
	}
	if _, ok := c.managers[id]; ok {
		return RoleManager
	}
	if _, ok := c.employees[id]; ok {
		return RoleEmployee
	}
	return RoleUnauthorized
}

// Managers 返回管理员 ID 列表的拷贝，供报表分发使用。
func (c *Classifier) Managers() []int64 {
	if c == nil || len(c.managerList) == 0 {
		return nil
	}
	return append([]int64(nil), c.managerList...)
}
