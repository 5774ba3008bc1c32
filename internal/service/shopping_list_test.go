package service_test

import (
	"math/rand"
	"testing"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateShoppingList(t *testing.T) {
	env := setupEnv(t)
	chef := testhelpers.CreateUser(t, env.db, "chef")
	shopper := testhelpers.CreateUser(t, env.db, "shopper")
	salt := testhelpers.CreateIngredient(t, env.db, "Salt", "g")
	saltPinch := testhelpers.CreateIngredient(t, env.db, "Salt", "pinch")
	eggs := testhelpers.CreateIngredient(t, env.db, "Eggs", "pcs")

	soup := testhelpers.CreateRecipe(t, env.db, chef, "Soup", []testhelpers.Line{{Ingredient: salt, Amount: 5}, {Ingredient: eggs, Amount: 2}})
	stew := testhelpers.CreateRecipe(t, env.db, chef, "Stew", []testhelpers.Line{{Ingredient: salt, Amount: 3}, {Ingredient: saltPinch, Amount: 1}})
	testhelpers.CreateRecipe(t, env.db, chef, "Cake", []testhelpers.Line{{Ingredient: eggs, Amount: 6}})

	for _, id := range []uint{soup.ID, stew.ID} {
		_, err := env.collections.AddToCart(ctx, shopper.ID, id)
		require.NoError(t, err)
	}

	items, err := env.shopping.Aggregate(ctx, shopper.ID)
	require.NoError(t, err)
	assert.Equal(t, []types.ShoppingListItem{
		{Name: "Eggs", MeasurementUnit: "pcs", Amount: 2},
		{Name: "Salt", MeasurementUnit: "g", Amount: 8},
		{Name: "Salt", MeasurementUnit: "pinch", Amount: 1},
	}, items)

	assert.Equal(t, "Eggs — 2 pcs\nSalt — 8 g\nSalt — 1 pinch\n", env.shopping.Render(items))
	assert.Equal(t, "shopping_list_shopper.txt", env.shopping.FileName(shopper.Username))
}

func TestAggregateMergesDistinctIngredientsWithSameNameAndUnit(t *testing.T) {
	env := setupEnv(t)
	chef := testhelpers.CreateUser(t, env.db, "chef")
	shopper := testhelpers.CreateUser(t, env.db, "shopper")
	salt := testhelpers.CreateIngredient(t, env.db, "Salt", "g")
	seaSalt := testhelpers.CreateIngredient(t, env.db, "Salt", "g")
	require.NotEqual(t, salt.ID, seaSalt.ID)

	soup := testhelpers.CreateRecipe(t, env.db, chef, "Soup", []testhelpers.Line{{Ingredient: salt, Amount: 5}})
	stew := testhelpers.CreateRecipe(t, env.db, chef, "Stew", []testhelpers.Line{{Ingredient: seaSalt, Amount: 3}})
	for _, id := range []uint{soup.ID, stew.ID} {
		_, err := env.collections.AddToCart(ctx, shopper.ID, id)
		require.NoError(t, err)
	}

	items, err := env.shopping.Aggregate(ctx, shopper.ID)
	require.NoError(t, err)
	assert.Equal(t, []types.ShoppingListItem{{Name: "Salt", MeasurementUnit: "g", Amount: 8}}, items)
}

func TestAggregateEmptyCart(t *testing.T) {
	env := setupEnv(t)
	shopper := testhelpers.CreateUser(t, env.db, "shopper")

	items, err := env.shopping.Aggregate(ctx, shopper.ID)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Equal(t, "", env.shopping.Render(items))
}

func TestAggregateIgnoresCartOrder(t *testing.T) {
	env := setupEnv(t)
	chef := testhelpers.CreateUser(t, env.db, "chef")
	salt := testhelpers.CreateIngredient(t, env.db, "Salt", "g")
	flour := testhelpers.CreateIngredient(t, env.db, "Flour", "g")
	milk := testhelpers.CreateIngredient(t, env.db, "Milk", "ml")

	var ids []uint
	for i, name := range []string{"R1", "R2", "R3", "R4"} {
		r := testhelpers.CreateRecipe(t, env.db, chef, name, []testhelpers.Line{
			{Ingredient: salt, Amount: i + 1},
			{Ingredient: flour, Amount: 100},
			{Ingredient: milk, Amount: 10 * (i + 1)},
		})
		ids = append(ids, r.ID)
	}

	var first []types.ShoppingListItem
	for attempt := 0; attempt < 3; attempt++ {
		shopper := testhelpers.CreateUser(t, env.db, "shopper"+string(rune('a'+attempt)))
		order := append([]uint(nil), ids...)
		rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		for _, id := range order {
			_, err := env.collections.AddToCart(ctx, shopper.ID, id)
			require.NoError(t, err)
		}

		items, err := env.shopping.Aggregate(ctx, shopper.ID)
		require.NoError(t, err)
		if first == nil {
			first = items
			continue
		}
		assert.Equal(t, first, items)
	}

	assert.Equal(t, []types.ShoppingListItem{
		{Name: "Flour", MeasurementUnit: "g", Amount: 400},
		{Name: "Milk", MeasurementUnit: "ml", Amount: 100},
		{Name: "Salt", MeasurementUnit: "g", Amount: 10},
	}, first)
}
