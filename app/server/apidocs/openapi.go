package apidocs

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// 复用的结构定义

func envelopeSchema(data *openapi3.Schema) *openapi3.Schema {
	s := openapi3.NewObjectSchema().
		WithProperty("success", openapi3.NewBoolSchema()).
		WithProperty("message", openapi3.NewStringSchema())
	if data != nil {
		s = s.WithProperty("data", data)
	}
	return s
}

func errorSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("success", openapi3.NewBoolSchema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("error", openapi3.NewStringSchema().WithEnum(
			"InvalidInput", "MissingField", "InvalidResourceId", "MissingToken", "InvalidOrExpiredToken",
			"NotAuthenticated", "ResourceNotFound", "NotOwner", "EmailTaken", "InvalidCredentials",
			"SigningError", "DataAccessFailure",
		))
}

func timestamps(s *openapi3.Schema) *openapi3.Schema {
	return s.
		WithProperty("id", openapi3.NewIntegerSchema()).
		WithProperty("createdAt", openapi3.NewDateTimeSchema()).
		WithProperty("updatedAt", openapi3.NewDateTimeSchema())
}

func publicUserSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewIntegerSchema()).
		WithProperty("email", openapi3.NewStringSchema()).
		WithProperty("username", openapi3.NewStringSchema()).
		WithProperty("image", openapi3.NewStringSchema().WithNullable())
}

func userSchema() *openapi3.Schema {
	profile := timestamps(openapi3.NewObjectSchema()).
		WithProperty("UserId", openapi3.NewIntegerSchema()).
		WithProperty("fullName", openapi3.NewStringSchema().WithNullable()).
		WithProperty("phone", openapi3.NewStringSchema().WithNullable()).
		WithProperty("address", openapi3.NewStringSchema().WithNullable())
	return timestamps(openapi3.NewObjectSchema()).
		WithProperty("email", openapi3.NewStringSchema()).
		WithProperty("username", openapi3.NewStringSchema()).
		WithProperty("image", openapi3.NewStringSchema().WithNullable()).
		WithProperty("Profile", profile)
}

func brandSchema() *openapi3.Schema {
	return timestamps(openapi3.NewObjectSchema()).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("city", openapi3.NewStringSchema()).
		WithProperty("region", openapi3.NewStringSchema()).
		WithProperty("country", openapi3.NewStringSchema())
}

func typeSchema() *openapi3.Schema {
	return timestamps(openapi3.NewObjectSchema()).
		WithProperty("name", openapi3.NewStringSchema())
}

func itemSchema() *openapi3.Schema {
	return timestamps(openapi3.NewObjectSchema()).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("category", openapi3.NewStringSchema()).
		WithProperty("price", openapi3.NewIntegerSchema()).
		WithProperty("stock", openapi3.NewIntegerSchema()).
		WithProperty("image", openapi3.NewStringSchema().WithNullable()).
		WithProperty("UserId", openapi3.NewIntegerSchema().WithNullable()).
		WithProperty("TypeId", openapi3.NewIntegerSchema().WithNullable()).
		WithProperty("BrandId", openapi3.NewIntegerSchema().WithNullable()).
		WithProperty("User", publicUserSchema()).
		WithProperty("Type", typeSchema()).
		WithProperty("Brand", brandSchema())
}

func accountSchema(required ...string) *openapi3.Schema {
	s := openapi3.NewObjectSchema().
		WithProperty("email", openapi3.NewStringSchema()).
		WithProperty("username", openapi3.NewStringSchema()).
		WithProperty("password", openapi3.NewStringSchema()).
		WithProperty("image", openapi3.NewStringSchema().WithNullable())
	s.Required = required
	return s
}

func registerSchema() *openapi3.Schema {
	return accountSchema("email", "username", "password")
}

func itemInputSchema(required ...string) *openapi3.Schema {
	s := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("category", openapi3.NewStringSchema()).
		WithProperty("price", openapi3.NewIntegerSchema()).
		WithProperty("stock", openapi3.NewIntegerSchema()).
		WithProperty("image", openapi3.NewStringSchema().WithNullable()).
		WithProperty("TypeId", openapi3.NewIntegerSchema().WithNullable()).
		WithProperty("BrandId", openapi3.NewIntegerSchema().WithNullable())
	s.Required = required
	return s
}

type route struct {
	method  string
	path    string
	tag     string
	summary string
	auth    bool
	query   string
	body    *openapi3.Schema
	status  int
	data    *openapi3.Schema
	errors  []int
}

func (r route) operation() *openapi3.Operation {
	op := openapi3.NewOperation()
	op.Tags = []string{r.tag}
	op.Summary = r.summary
	if r.auth {
		op.Description = "Requires `Authorization: Bearer <token>` (or the legacy `access_token` header)."
	}

	if strings.Contains(r.path, "{id}") {
		op.AddParameter(openapi3.NewPathParameter("id").WithSchema(openapi3.NewIntegerSchema().WithMin(1)))
	}
	if r.query != "" {
		op.AddParameter(openapi3.NewQueryParameter(r.query).WithSchema(openapi3.NewStringSchema()))
	}
	if r.body != nil {
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(r.body),
		}
	}

	responses := openapi3.NewResponses(openapi3.WithStatus(r.status, &openapi3.ResponseRef{
		Value: openapi3.NewResponse().
			WithDescription(http.StatusText(r.status)).
			WithJSONSchema(envelopeSchema(r.data)),
	}))
	for _, code := range r.errors {
		responses.Set(strconv.Itoa(code), &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription(http.StatusText(code)).
				WithJSONSchema(errorSchema()),
		})
	}
	op.Responses = responses

	return op
}

func routes() []route {
	list := func(s *openapi3.Schema) *openapi3.Schema { return openapi3.NewArraySchema().WithItems(s) }
	authErrs := []int{http.StatusUnauthorized}
	ownerErrs := []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound}

	rs := []route{
		{method: http.MethodGet, path: "/api/users", tag: "users", summary: "List users", status: http.StatusOK, data: list(userSchema())},
		{method: http.MethodGet, path: "/api/users/search", tag: "users", summary: "Search users by username", query: "username", status: http.StatusOK, data: list(userSchema())},
		{method: http.MethodGet, path: "/api/users/{id}", tag: "users", summary: "Get a user", status: http.StatusOK, data: userSchema(), errors: []int{http.StatusBadRequest, http.StatusNotFound}},
		{method: http.MethodPost, path: "/api/users", tag: "users", summary: "Register", body: registerSchema(), status: http.StatusCreated, data: publicUserSchema(), errors: []int{http.StatusBadRequest, http.StatusConflict}},
		{method: http.MethodPost, path: "/api/users/bulk", tag: "users", summary: "Register many users at once", body: list(registerSchema()), status: http.StatusCreated, data: list(publicUserSchema()), errors: []int{http.StatusBadRequest, http.StatusConflict}},
		{method: http.MethodPut, path: "/api/users/{id}", tag: "users", summary: "Edit own account", auth: true, body: accountSchema(), status: http.StatusOK, data: userSchema(), errors: append(ownerErrs, http.StatusConflict)},
		{method: http.MethodDelete, path: "/api/users/{id}", tag: "users", summary: "Delete own account", auth: true, status: http.StatusOK, errors: ownerErrs},

		{method: http.MethodGet, path: "/api/items", tag: "items", summary: "List items", status: http.StatusOK, data: list(itemSchema())},
		{method: http.MethodGet, path: "/api/items/search", tag: "items", summary: "Search items by name", query: "name", status: http.StatusOK, data: list(itemSchema())},
		{method: http.MethodGet, path: "/api/items/{id}", tag: "items", summary: "Get an item", auth: true, status: http.StatusOK, data: itemSchema(), errors: []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound}},
		{method: http.MethodPost, path: "/api/items", tag: "items", summary: "Create an item owned by the caller", auth: true, body: itemInputSchema("name"), status: http.StatusCreated, data: itemSchema(), errors: append(authErrs, http.StatusBadRequest)},
		{method: http.MethodPost, path: "/api/items/bulk", tag: "items", summary: "Create many items at once", auth: true, body: list(itemInputSchema("name", "category", "price", "stock")), status: http.StatusCreated, data: list(itemSchema()), errors: append(authErrs, http.StatusBadRequest)},
		{method: http.MethodPut, path: "/api/items/{id}", tag: "items", summary: "Edit an owned item", auth: true, body: itemInputSchema(), status: http.StatusOK, data: itemSchema(), errors: ownerErrs},
		{method: http.MethodDelete, path: "/api/items/{id}", tag: "items", summary: "Delete an owned item", auth: true, status: http.StatusOK, errors: ownerErrs},
	}

	for _, c := range []struct {
		tag    string
		schema func() *openapi3.Schema
	}{
		{"brands", brandSchema},
		{"types", typeSchema},
	} {
		base := "/api/" + c.tag
		input := c.schema()
		rs = append(rs,
			route{method: http.MethodGet, path: base, tag: c.tag, summary: "List " + c.tag, status: http.StatusOK, data: list(c.schema())},
			route{method: http.MethodGet, path: base + "/search", tag: c.tag, summary: "Search " + c.tag + " by name", query: "name", status: http.StatusOK, data: list(c.schema())},
			route{method: http.MethodGet, path: base + "/{id}", tag: c.tag, summary: "Get one of " + c.tag, status: http.StatusOK, data: c.schema(), errors: []int{http.StatusBadRequest, http.StatusNotFound}},
			route{method: http.MethodPost, path: base, tag: c.tag, summary: "Create one of " + c.tag, auth: true, body: input, status: http.StatusCreated, data: c.schema(), errors: append(authErrs, http.StatusBadRequest)},
			route{method: http.MethodPut, path: base + "/{id}", tag: c.tag, summary: "Edit one of " + c.tag, auth: true, body: input, status: http.StatusOK, data: c.schema(), errors: append(authErrs, http.StatusBadRequest, http.StatusNotFound)},
			route{method: http.MethodDelete, path: base + "/{id}", tag: c.tag, summary: "Delete one of " + c.tag, auth: true, status: http.StatusOK, errors: append(authErrs, http.StatusBadRequest, http.StatusNotFound)},
		)
	}

	return rs
}

// Document builds the OpenAPI 3 description of every public route.
func Document() *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "Catalog API",
			Description: "Users, items, brands and types.",
			Version:     "1.0.0",
		},
		Paths: openapi3.NewPaths(),
	}

	login := openapi3.NewOperation()
	login.Tags = []string{"users"}
	login.Summary = "Log in and receive an access token"
	login.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(
		openapi3.NewObjectSchema().
			WithProperty("email", openapi3.NewStringSchema()).
			WithProperty("password", openapi3.NewStringSchema()),
	)}
	login.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: openapi3.NewResponse().
			WithDescription("Login successful").
			WithJSONSchema(envelopeSchema(nil).WithProperty("access_token", openapi3.NewStringSchema()))}),
		openapi3.WithStatus(http.StatusUnauthorized, &openapi3.ResponseRef{Value: openapi3.NewResponse().
			WithDescription("Invalid email or password").
			WithJSONSchema(errorSchema())}),
	)
	loginItem := &openapi3.PathItem{}
	loginItem.SetOperation(http.MethodPost, login)
	doc.Paths.Set("/api/users/login", loginItem)

	for _, r := range routes() {
		item := doc.Paths.Value(r.path)
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths.Set(r.path, item)
		}
		item.SetOperation(r.method, r.operation())
	}

	return doc
}
