package domain

import "sort"

// Operation is a CRUD verb a resource screen may expose.
type Operation uint8

const (
	OpList Operation = 1 << iota
	OpGet
	OpCreate
	OpUpdate
	OpDelete
)

const opCRUD = OpList | OpGet | OpCreate | OpUpdate | OpDelete

func (o Operation) String() string {
	switch o {
	case OpList:
		return "list"
	case OpGet:
		return "get"
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Resource describes one back-office entity served by the REST backend.
type Resource struct {
	// Name is both the backend path segment and the console path segment.
	Name  string
	Title string
	Roles RoleSet
	Ops   Operation
	// Singleton resources have no collection: GET and PUT on the bare path.
	Singleton bool
}

// Allows reports whether op is exposed for the resource.
func (r Resource) Allows(op Operation) bool {
	return r.Ops&op != 0
}

var (
	merchantOnly = MustRoleSet(RoleMerchant)
	adminOnly    = MustRoleSet(RoleAdmin)
	anyOperator  = MustRoleSet(RoleMerchant, RoleAdmin)
)

// resources mirrors the dashboard route table.
var resources = map[string]Resource{
	"products":      {Name: "products", Title: "Products", Roles: anyOperator, Ops: opCRUD},
	"categories":    {Name: "categories", Title: "Categories", Roles: merchantOnly, Ops: opCRUD},
	"deals":         {Name: "deals", Title: "Deals", Roles: merchantOnly, Ops: opCRUD},
	"order":         {Name: "order", Title: "Orders", Roles: merchantOnly, Ops: OpList | OpGet | OpUpdate},
	"time":          {Name: "time", Title: "Opening Time", Roles: merchantOnly, Ops: OpGet | OpUpdate, Singleton: true},
	"orderStatuses": {Name: "orderStatuses", Title: "Order Statuses", Roles: adminOnly, Ops: opCRUD},
	"sale":          {Name: "sale", Title: "Sales", Roles: adminOnly, Ops: OpList | OpGet},
	"cities":        {Name: "cities", Title: "Cities", Roles: adminOnly, Ops: opCRUD},
	"warehouses":    {Name: "warehouses", Title: "Warehouses", Roles: adminOnly, Ops: opCRUD},
	"customers":     {Name: "customers", Title: "Customers", Roles: adminOnly, Ops: OpList | OpGet},
	"merchants":     {Name: "merchants", Title: "Merchants", Roles: adminOnly, Ops: OpList | OpGet},
	"userAdmins":    {Name: "userAdmins", Title: "Users", Roles: adminOnly, Ops: opCRUD},
}

// LookupResource returns the catalog entry for name.
func LookupResource(name string) (Resource, bool) {
	r, ok := resources[name]
	return r, ok
}

// Resources returns the whole catalog sorted by name.
func Resources() []Resource {
	out := make([]Resource, 0, len(resources))
	for _, r := range resources {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ResourcesFor returns the resources a role may open, for navigation menus.
func ResourcesFor(role Role) []Resource {
	var out []Resource
	for _, r := range Resources() {
		if r.Roles.Contains(role) {
			out = append(out, r)
		}
	}
	return out
}
