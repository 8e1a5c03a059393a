package handlers

import (
	"catalog-service/app/server/auth"
	"catalog-service/app/server/config"
	"catalog-service/app/server/hasher"
	"catalog-service/app/server/jwt"
	"catalog-service/app/server/models"
	"catalog-service/app/server/store"
	"catalog-service/app/server/store/storetest"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	e   *echo.Echo
	db  *gorm.DB
	st  *store.Store
	jwt *jwt.JWT
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	l := zaptest.NewLogger(t)
	db := storetest.Open(t)
	st := store.New(db)
	h, err := hasher.New(l, hasher.Options{Algorithm: config.HashBcrypt, Cost: bcrypt.MinCost})
	require.NoError(t, err)
	j, err := jwt.New("handler-secret", time.Hour)
	require.NoError(t, err)

	app := NewApp(l, st, auth.New(l, st, h, j), j)
	return &testEnv{e: NewServer(l, app, nil), db: db, st: st, jwt: j}
}

func (env *testEnv) api() *apitest.APITest {
	return apitest.New().Handler(env.e)
}

// register 通过接口注册，并直接签出令牌
func (env *testEnv) register(t *testing.T, email string) (uint, string) {
	t.Helper()
	env.api().
		Post("/api/users").
		JSON(fmt.Sprintf(`{"email":%q,"username":"u","password":"pw"}`, email)).
		Expect(t).
		Status(http.StatusCreated).
		End()

	user, err := env.st.FindUserByEmail(context.Background(), email)
	require.NoError(t, err)
	token, err := env.jwt.SignToken(&jwt.User{ID: user.ID, Username: user.Username, Email: user.Email})
	require.NoError(t, err)
	return user.ID, token
}

func (env *testEnv) createItem(t *testing.T, token string, name string) uint {
	t.Helper()
	env.api().
		Post("/api/items").
		Header("Authorization", "Bearer "+token).
		JSON(fmt.Sprintf(`{"name":%q,"category":"tools","price":10,"stock":2}`, name)).
		Expect(t).
		Status(http.StatusCreated).
		End()

	items, err := env.st.SearchItems(context.Background(), name)
	require.NoError(t, err)
	require.Len(t, items, 1)
	return items[0].ID
}

func TestRoot(t *testing.T) {
	env := newEnv(t)

	env.api().Get("/api").Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.message", "WEB API")).
		End()
	env.api().Get("/healthz").Expect(t).Status(http.StatusOK).End()
	env.api().Get("/api/nothing-here").Expect(t).
		Status(http.StatusNotFound).
		Assert(jsonpath.Equal("$.success", false)).
		Assert(jsonpath.Equal("$.error", "RouteNotFound")).
		End()
}

func TestRegisterEndpoint(t *testing.T) {
	env := newEnv(t)

	env.api().
		Post("/api/users").
		JSON(`{"email":"a@example.com","username":"alice","password":"s3cret"}`).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal("$.success", true)).
		Assert(jsonpath.Equal("$.data.email", "a@example.com")).
		Assert(jsonpath.Equal("$.data.username", "alice")).
		Assert(jsonpath.Present("$.data.id")).
		Assert(jsonpath.NotPresent("$.data.password")).
		End()

	env.api().
		Post("/api/users").
		JSON(`{"email":"a@example.com","username":"again","password":"x"}`).
		Expect(t).
		Status(http.StatusConflict).
		Assert(jsonpath.Equal("$.error", "EmailTaken")).
		End()

	env.api().
		Post("/api/users").
		JSON(`{"email":"b@example.com"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.error", "MissingField")).
		End()

	env.api().
		Post("/api/users").
		JSON(`{"email":`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.error", "InvalidInput")).
		End()

	var profiles int64
	require.NoError(t, env.db.Model(&models.Profile{}).Count(&profiles).Error)
	assert.EqualValues(t, 1, profiles)

	// 列表中不包含密码哈希
	env.api().Get("/api/users").Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.data[0].email", "a@example.com")).
		Assert(jsonpath.Present("$.data[0].Profile")).
		Assert(jsonpath.NotPresent("$.data[0].password")).
		End()
}

func TestRegisterBulkEndpoint(t *testing.T) {
	env := newEnv(t)
	env.register(t, "u2@example.com")

	users := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		users = append(users, fmt.Sprintf(`{"email":"u%d@example.com","username":"u%d","password":"pw"}`, i, i))
	}
	body := "[" + strings.Join(users, ",") + "]"

	env.api().
		Post("/api/users/bulk").
		JSON(body).
		Expect(t).
		Status(http.StatusConflict).
		Assert(jsonpath.Equal("$.error", "EmailTaken")).
		Assert(jsonpath.Contains("$.message", "u2@example.com")).
		End()

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	env.api().
		Post("/api/users/bulk").
		JSON(`[]`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.error", "InvalidInput")).
		End()

	body = strings.Replace(body, "u2@example.com", "u9@example.com", 1)
	env.api().
		Post("/api/users/bulk").
		JSON(body).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Len("$.data", 5)).
		Assert(jsonpath.NotPresent("$.data[0].password")).
		End()

	require.NoError(t, env.db.Model(&models.Profile{}).Count(&count).Error)
	assert.EqualValues(t, 6, count)
}

func TestLoginEndpoint(t *testing.T) {
	env := newEnv(t)
	env.register(t, "a@example.com")

	env.api().
		Post("/api/users/login").
		JSON(`{"email":"a@example.com","password":"pw"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.success", true)).
		Assert(jsonpath.Present("$.access_token")).
		Assert(jsonpath.Equal("$.expires_in", float64(time.Hour/time.Second))).
		End()

	// 两种失败的响应完全相同
	for _, body := range []string{
		`{"email":"a@example.com","password":"nope"}`,
		`{"email":"ghost@example.com","password":"pw"}`,
	} {
		env.api().
			Post("/api/users/login").
			JSON(body).
			Expect(t).
			Status(http.StatusUnauthorized).
			Body(`{"success":false,"message":"Invalid email or password","error":"InvalidCredentials"}`).
			End()
	}

	env.api().
		Post("/api/users/login").
		JSON(`{"email":"a@example.com"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.error", "MissingField")).
		End()
}

func TestItemOwnership(t *testing.T) {
	env := newEnv(t)
	_, ownerToken := env.register(t, "owner@example.com")
	_, otherToken := env.register(t, "other@example.com")
	id := env.createItem(t, ownerToken, "Anvil")
	path := fmt.Sprintf("/api/items/%d", id)

	env.api().Put(path).JSON(`{"name":"Stolen"}`).Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal("$.error", "MissingToken")).
		End()

	env.api().Put(path).
		Header("Authorization", "Bearer not-a-token").
		JSON(`{"name":"Stolen"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal("$.error", "InvalidOrExpiredToken")).
		End()

	env.api().Put(path).
		Header("Authorization", "Bearer "+otherToken).
		JSON(`{"name":"Stolen"}`).
		Expect(t).
		Status(http.StatusForbidden).
		Assert(jsonpath.Equal("$.error", "NotOwner")).
		End()

	env.api().Delete(path).
		Header("access_token", otherToken).
		Expect(t).
		Status(http.StatusForbidden).
		Assert(jsonpath.Equal("$.error", "NotOwner")).
		End()

	env.api().Put("/api/items/999").
		Header("Authorization", "Bearer "+ownerToken).
		JSON(`{"name":"Ghost"}`).
		Expect(t).
		Status(http.StatusNotFound).
		Assert(jsonpath.Equal("$.error", "ResourceNotFound")).
		End()

	env.api().Put("/api/items/abc").
		Header("Authorization", "Bearer "+ownerToken).
		JSON(`{"name":"Ghost"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.error", "InvalidResourceId")).
		End()

	// UserId 在请求体中被忽略
	env.api().Put(path).
		Header("Authorization", "Bearer "+ownerToken).
		JSON(`{"name":"Big Anvil","UserId":12345}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.data.name", "Big Anvil")).
		End()

	ownerID, err := env.st.ItemOwnerID(context.Background(), id)
	require.NoError(t, err)
	owner, err := env.st.FindUserByEmail(context.Background(), "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, ownerID)

	env.api().Get(path).
		Header("Authorization", "Bearer "+otherToken).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.data.name", "Big Anvil")).
		Assert(jsonpath.Equal("$.data.User.email", "owner@example.com")).
		Assert(jsonpath.NotPresent("$.data.User.password")).
		End()

	env.api().Delete(path).
		Header("Authorization", "Bearer "+ownerToken).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.success", true)).
		End()

	env.api().Get(path).
		Header("Authorization", "Bearer "+ownerToken).
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestItemCreateUsesTokenOwner(t *testing.T) {
	env := newEnv(t)
	ownerID, token := env.register(t, "owner@example.com")

	env.api().Post("/api/items").
		JSON(`{"name":"Anvil"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	env.api().Post("/api/items").
		Header("Authorization", "Bearer "+token).
		JSON(`{"name":"Anvil","UserId":999}`).
		Expect(t).
		Status(http.StatusCreated).
		End()

	items, err := env.st.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].UserID)
	assert.Equal(t, ownerID, *items[0].UserID)

	env.api().Post("/api/items").
		Header("Authorization", "Bearer "+token).
		JSON(`{"category":"tools"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.error", "MissingField")).
		End()

	env.api().Post("/api/items").
		Header("Authorization", "Bearer "+token).
		JSON(`{"name":"Orphan","BrandId":77}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.error", "InvalidInput")).
		End()
}

func TestItemCreateAfterOwnerDeleted(t *testing.T) {
	env := newEnv(t)
	ownerID, token := env.register(t, "gone@example.com")

	env.api().Delete(fmt.Sprintf("/api/users/%d", ownerID)).
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Status(http.StatusOK).
		End()

	// 令牌未过期，但用户已被删除
	env.api().Post("/api/items").
		Header("Authorization", "Bearer "+token).
		JSON(`{"name":"Ghost","category":"c","price":1,"stock":1}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal("$.error", "NotAuthenticated")).
		End()

	env.api().Post("/api/items/bulk").
		Header("Authorization", "Bearer "+token).
		JSON(`[{"name":"Ghost","category":"c","price":1,"stock":1}]`).
		Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal("$.error", "NotAuthenticated")).
		End()

	items, err := env.st.ListItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemUpdateClearsReferences(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	_, token := env.register(t, "owner@example.com")

	brand := &models.Brand{Name: "Acme"}
	require.NoError(t, env.st.CreateBrand(ctx, brand))
	kind := &models.Type{Name: "Hardware"}
	require.NoError(t, env.st.CreateType(ctx, kind))

	env.api().Post("/api/items").
		Header("Authorization", "Bearer "+token).
		JSON(fmt.Sprintf(`{"name":"Anvil","image":"a.png","BrandId":%d,"TypeId":%d}`, brand.ID, kind.ID)).
		Expect(t).
		Status(http.StatusCreated).
		End()
	items, err := env.st.SearchItems(ctx, "Anvil")
	require.NoError(t, err)
	require.Len(t, items, 1)
	path := fmt.Sprintf("/api/items/%d", items[0].ID)

	// 未出现的字段保持不变
	env.api().Put(path).
		Header("Authorization", "Bearer "+token).
		JSON(`{"name":"Big Anvil"}`).
		Expect(t).
		Status(http.StatusOK).
		End()
	item, err := env.st.GetItem(ctx, items[0].ID)
	require.NoError(t, err)
	require.NotNil(t, item.BrandID)
	require.NotNil(t, item.TypeID)
	require.NotNil(t, item.Image)

	// 显式 null 清空
	env.api().Put(path).
		Header("Authorization", "Bearer "+token).
		JSON(`{"BrandId":null,"image":null}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.NotPresent("$.data.Brand")).
		End()
	item, err = env.st.GetItem(ctx, items[0].ID)
	require.NoError(t, err)
	assert.Nil(t, item.BrandID)
	assert.Nil(t, item.Image)
	require.NotNil(t, item.TypeID)
	assert.Equal(t, kind.ID, *item.TypeID)

	env.api().Put(path).
		Header("Authorization", "Bearer "+token).
		JSON(`{"TypeId":987}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.error", "InvalidInput")).
		End()
}

func TestNullableUnmarshal(t *testing.T) {
	var in ItemUpdateInput
	require.NoError(t, json.Unmarshal([]byte(`{"TypeId":3,"BrandId":null}`), &in))
	assert.True(t, in.TypeID.Set)
	require.NotNil(t, in.TypeID.Value)
	assert.Equal(t, uint(3), *in.TypeID.Value)
	assert.True(t, in.BrandID.Set)
	assert.Nil(t, in.BrandID.Value)
	assert.False(t, in.Image.Set)

	assert.Error(t, json.Unmarshal([]byte(`{"TypeId":"x"}`), &in))

	updates := (&ItemUpdateInput{BrandID: Nullable[uint]{Set: true}}).updates()
	v, ok := updates["brand_id"]
	require.True(t, ok)
	assert.Nil(t, v.(*uint))
	assert.NotContains(t, updates, "type_id")
}

func TestItemBulkEndpoint(t *testing.T) {
	env := newEnv(t)
	_, token := env.register(t, "owner@example.com")

	env.api().Post("/api/items/bulk").
		Header("Authorization", "Bearer "+token).
		JSON(`[{"name":"a","category":"c","price":1,"stock":0},{"name":"b","category":"c","price":2}]`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.error", "MissingField")).
		Assert(jsonpath.Contains("$.message", "items[1]")).
		End()

	items, err := env.st.ListItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)

	env.api().Post("/api/items/bulk").
		Header("Authorization", "Bearer "+token).
		JSON(`[{"name":"a","category":"c","price":1,"stock":0},{"name":"b","category":"c","price":2,"stock":3}]`).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Len("$.data", 2)).
		End()

	env.api().Get("/api/items/search").
		Query("name", "B").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$.data", 1)).
		Assert(jsonpath.Equal("$.data[0].name", "b")).
		End()
}

func TestUserSelfService(t *testing.T) {
	env := newEnv(t)
	aliceID, aliceToken := env.register(t, "alice@example.com")
	bobID, bobToken := env.register(t, "bob@example.com")
	itemID := env.createItem(t, bobToken, "Bike")

	env.api().Put(fmt.Sprintf("/api/users/%d", bobID)).
		Header("Authorization", "Bearer "+aliceToken).
		JSON(`{"username":"hijacked"}`).
		Expect(t).
		Status(http.StatusForbidden).
		Assert(jsonpath.Equal("$.error", "NotOwner")).
		End()

	env.api().Put(fmt.Sprintf("/api/users/%d", aliceID)).
		Header("Authorization", "Bearer "+aliceToken).
		JSON(`{"email":"bob@example.com"}`).
		Expect(t).
		Status(http.StatusConflict).
		Assert(jsonpath.Equal("$.error", "EmailTaken")).
		End()

	env.api().Put(fmt.Sprintf("/api/users/%d", aliceID)).
		Header("Authorization", "Bearer "+aliceToken).
		JSON(`{"username":"alice","password":"changed"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.data.username", "alice")).
		Assert(jsonpath.NotPresent("$.data.password")).
		End()

	env.api().Post("/api/users/login").
		JSON(`{"email":"alice@example.com","password":"changed"}`).
		Expect(t).
		Status(http.StatusOK).
		End()

	env.api().Delete(fmt.Sprintf("/api/users/%d", bobID)).
		Header("Authorization", "Bearer "+bobToken).
		Expect(t).
		Status(http.StatusOK).
		End()

	env.api().Get(fmt.Sprintf("/api/users/%d", bobID)).
		Expect(t).
		Status(http.StatusNotFound).
		Assert(jsonpath.Equal("$.error", "ResourceNotFound")).
		End()

	item, err := env.st.GetItem(context.Background(), itemID)
	require.NoError(t, err)
	assert.Nil(t, item.UserID)

	// 令牌仍然有效，但资源已不存在
	env.api().Delete(fmt.Sprintf("/api/users/%d", bobID)).
		Header("Authorization", "Bearer "+bobToken).
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestBrandsAndTypes(t *testing.T) {
	env := newEnv(t)
	_, token := env.register(t, "a@example.com")

	env.api().Post("/api/brands").
		JSON(`{"name":"Acme"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	env.api().Post("/api/brands").
		Header("Authorization", "Bearer "+token).
		JSON(`{"name":"Acme","city":"Springfield","country":"US"}`).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal("$.data.city", "Springfield")).
		End()

	brands, err := env.st.ListBrands(context.Background())
	require.NoError(t, err)
	require.Len(t, brands, 1)
	brandPath := fmt.Sprintf("/api/brands/%d", brands[0].ID)

	env.api().Put(brandPath).
		Header("Authorization", "Bearer "+token).
		JSON(`{"region":"West"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.data.region", "West")).
		Assert(jsonpath.Equal("$.data.name", "Acme")).
		End()

	env.api().Get("/api/brands/search").
		Query("name", "acm").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$.data", 1)).
		End()

	env.api().Post("/api/types").
		Header("Authorization", "Bearer "+token).
		JSON(`{"name":"Hardware"}`).
		Expect(t).
		Status(http.StatusCreated).
		End()

	types, err := env.st.ListTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 1)
	typePath := fmt.Sprintf("/api/types/%d", types[0].ID)

	env.api().Put(typePath).
		Header("Authorization", "Bearer "+token).
		JSON(`{"name":"Tools"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.data.name", "Tools")).
		End()

	env.api().Get(typePath).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.data.name", "Tools")).
		End()

	env.api().Delete(typePath).
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Status(http.StatusOK).
		End()
	env.api().Delete(typePath).
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Status(http.StatusNotFound).
		Assert(jsonpath.Equal("$.error", "ResourceNotFound")).
		End()

	env.api().Get("/api/brands/zero").
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.error", "InvalidResourceId")).
		End()
}
