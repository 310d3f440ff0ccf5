package shop_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshop/internal/book"
	"bookshop/internal/shop"
	"bookshop/internal/testutil"
	"bookshop/internal/user"
)

func bookKeys(books []book.Book) map[string]bool {
	keys := make(map[string]bool, len(books))
	for _, b := range books {
		keys[b.Key()] = true
	}
	return keys
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture()

	t.Run("success creates a session with an empty basket", func(t *testing.T) {
		sess, err := f.Shop.Login(ctx, "alice", "secret")
		require.NoError(t, err)
		assert.Equal(t, "alice", sess.User.Username)
		assert.Empty(t, sess.Basket.Items())
		assert.True(t, sess.Basket.Total().IsZero())
	})

	t.Run("relogin discards the old basket", func(t *testing.T) {
		b := testutil.MustBook("T", "A", "10.00")
		first := f.MustLogin("alice", "secret")
		f.Shop.AddToBasket(first, b, 2)

		second := f.MustLogin("alice", "secret")
		assert.Empty(t, second.Basket.Items())
		assert.NotSame(t, first.Basket, second.Basket)
	})

	t.Run("bad credentials yield no session", func(t *testing.T) {
		_, err := f.Shop.Login(ctx, "alice", "nope")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})
}

func TestSearchEmptyQueryDeduplicates(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture()
	b := testutil.MustBook("T", "A", "10.00")
	f.Stock(b, 2)
	f.Stock(testutil.MustBook("Other", "B", "5.00"), 1)

	sess := f.MustLogin("alice", "secret")
	results := f.Shop.Search(ctx, sess, "")

	assert.Len(t, results, 2, "duplicate stock rows collapse to one entry each")
	assert.True(t, bookKeys(results)[b.Key()])
}

func TestSearchTokensUnionAcrossTitleAndAuthor(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture()
	goBook := testutil.MustBook("Learning Go", "Jon Bodner", "35.00")
	rustBook := testutil.MustBook("The Rust Book", "Steve Klabnik", "0.00")
	unrelated := testutil.MustBook("Cooking", "Julia Child", "25.00")
	f.Stock(goBook, 3)
	f.Stock(rustBook, 1)
	f.Stock(unrelated, 1)

	sess := f.MustLogin("alice", "secret")

	t.Run("single token matches title or author", func(t *testing.T) {
		byTitle := f.Shop.Search(ctx, sess, "Rust")
		assert.Equal(t, bookKeys([]book.Book{rustBook}), bookKeys(byTitle))

		byAuthor := f.Shop.Search(ctx, sess, "Bodner")
		assert.Equal(t, bookKeys([]book.Book{goBook}), bookKeys(byAuthor))
	})

	t.Run("multi-token query is the dedup union of per-token results", func(t *testing.T) {
		combined := f.Shop.Search(ctx, sess, "Go Rust")
		union := bookKeys(f.Shop.Search(ctx, sess, "Go"))
		for k := range bookKeys(f.Shop.Search(ctx, sess, "Rust")) {
			union[k] = true
		}
		assert.Equal(t, union, bookKeys(combined))
	})

	t.Run("token order does not change the result set", func(t *testing.T) {
		a := f.Shop.Search(ctx, sess, "Go Rust")
		b := f.Shop.Search(ctx, sess, "Rust Go")
		assert.Equal(t, bookKeys(a), bookKeys(b))
	})

	t.Run("repeated tokens collapse", func(t *testing.T) {
		a := f.Shop.Search(ctx, sess, "Go Go Go")
		b := f.Shop.Search(ctx, sess, "Go")
		assert.Equal(t, bookKeys(b), bookKeys(a))
		assert.Len(t, a, len(b), "no duplicate entries from repeated tokens")
	})

	t.Run("whitespace-only query matches nothing", func(t *testing.T) {
		// Not the empty query: it tokenizes to zero tokens, and the union
		// over zero tokens is empty rather than the full catalog.
		assert.Empty(t, f.Shop.Search(ctx, sess, "   "))
		assert.Empty(t, f.Shop.Search(ctx, sess, "\t\n"))
	})

	t.Run("logged out returns empty", func(t *testing.T) {
		assert.Empty(t, f.Shop.Search(ctx, nil, "Go"))
		assert.Empty(t, f.Shop.Search(ctx, nil, ""))
	})
}

func TestBasketOperations(t *testing.T) {
	f := testutil.NewFixture()
	b := testutil.MustBook("T", "A", "10.00")

	t.Run("add performs independent unit increments", func(t *testing.T) {
		sess := f.MustLogin("alice", "secret")
		assert.True(t, f.Shop.AddToBasket(sess, b, 3))

		items := sess.Basket.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 3, items[0].Quantity)
		assert.True(t, sess.Basket.Total().Equal(decimal.RequireFromString("30.00")))
	})

	t.Run("add ignores stock levels", func(t *testing.T) {
		// Nothing of this book is in the catalog; adding still succeeds.
		sess := f.MustLogin("alice", "secret")
		assert.True(t, f.Shop.AddToBasket(sess, testutil.MustBook("Ghost", "Nobody", "1.00"), 5))
	})

	t.Run("remove decrements and stops at zero", func(t *testing.T) {
		sess := f.MustLogin("alice", "secret")
		f.Shop.AddToBasket(sess, b, 2)

		assert.True(t, f.Shop.RemoveFromBasket(sess, b, 1))
		assert.True(t, sess.Basket.Total().Equal(decimal.RequireFromString("10.00")))

		// Asking for more decrements than held: drains to zero, reports false.
		assert.False(t, f.Shop.RemoveFromBasket(sess, b, 5))
		assert.Empty(t, sess.Basket.Items())
		assert.True(t, sess.Basket.Total().IsZero())
	})

	t.Run("logged out is a no-op returning false", func(t *testing.T) {
		assert.False(t, f.Shop.AddToBasket(nil, b, 1))
		assert.False(t, f.Shop.RemoveFromBasket(nil, b, 1))
		assert.Nil(t, f.Shop.ViewBasket(nil))
	})
}

func TestPurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("partial failure keeps per-book statuses in order", func(t *testing.T) {
		f := testutil.NewFixture()
		inStock := testutil.MustBook("T", "A", "10.00")
		outOfStock := testutil.MustBook("Gone", "B", "5.00")
		f.Stock(inStock, 1)

		sess := f.MustLogin("alice", "secret")
		f.Shop.AddToBasket(sess, inStock, 1)
		f.Shop.AddToBasket(sess, outOfStock, 1)

		statuses := f.Shop.Purchase(ctx, sess, inStock, outOfStock)
		require.Equal(t, []shop.PurchaseStatus{shop.StatusOK, shop.StatusNotInStock}, statuses)

		// The basket clears regardless of individual failures.
		assert.Empty(t, sess.Basket.Items())
		assert.True(t, sess.Basket.Total().IsZero())
	})

	t.Run("each unit decrements stock by one", func(t *testing.T) {
		f := testutil.NewFixture()
		b := testutil.MustBook("T", "A", "10.00")
		f.Stock(b, 2)

		sess := f.MustLogin("alice", "secret")
		statuses := f.Shop.Purchase(ctx, sess, b, b, b)
		assert.Equal(t, []shop.PurchaseStatus{shop.StatusOK, shop.StatusOK, shop.StatusNotInStock}, statuses)

		rows, err := f.Catalog.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("logged out returns empty and touches nothing", func(t *testing.T) {
		f := testutil.NewFixture()
		b := testutil.MustBook("T", "A", "10.00")
		f.Stock(b, 1)

		assert.Empty(t, f.Shop.Purchase(ctx, nil, b))

		rows, err := f.Catalog.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})
}

// Concurrent purchases must not interleave their check-then-remove
// sequences: when several buyers race for the last unit, exactly one wins.
func TestPurchaseSerializesConcurrentBuyers(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture()
	b := testutil.MustBook("T", "A", "10.00")
	f.Stock(b, 1)

	const buyers = 8
	statuses := make([]shop.PurchaseStatus, buyers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		sess := f.MustLogin("alice", "secret")
		wg.Add(1)
		go func(i int, sess *shop.Session) {
			defer wg.Done()
			<-start
			res := f.Shop.Purchase(ctx, sess, b)
			if assert.Len(t, res, 1) {
				statuses[i] = res[0]
			} else {
				statuses[i] = shop.StatusNotInStock
			}
		}(i, sess)
	}
	close(start)
	wg.Wait()

	okCount := 0
	for _, status := range statuses {
		if status == shop.StatusOK {
			okCount++
		}
	}
	assert.Equal(t, 1, okCount, "exactly one buyer gets the last unit")

	rows, err := f.Catalog.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

// The end-to-end walk from the catalog through basket arithmetic to stock
// decrement.
func TestShoppingScenario(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture()
	b := testutil.MustBook("T", "A", "10.00")
	f.Stock(b, 2)

	sess := f.MustLogin("alice", "secret")

	results := f.Shop.Search(ctx, sess, "")
	require.Len(t, results, 1, "two stock rows, one distinct book")

	require.True(t, f.Shop.AddToBasket(sess, b, 2))
	assert.True(t, sess.Basket.Total().Equal(decimal.RequireFromString("20.00")))
	require.Len(t, sess.Basket.Items(), 1)
	assert.Equal(t, 2, sess.Basket.Items()[0].Quantity)

	require.True(t, f.Shop.RemoveFromBasket(sess, b, 1))
	assert.True(t, sess.Basket.Total().Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, 1, sess.Basket.Items()[0].Quantity)

	statuses := f.Shop.Purchase(ctx, sess, b)
	assert.Equal(t, []shop.PurchaseStatus{shop.StatusOK}, statuses)
	assert.Empty(t, sess.Basket.Items())

	rows, err := f.Catalog.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "one unit left in stock")
}

func TestAddUser(t *testing.T) {
	ctx := context.Background()

	t.Run("anyone may create a regular account", func(t *testing.T) {
		f := testutil.NewFixture()
		assert.True(t, f.Shop.AddUser(ctx, nil, "carol", "pw", false))
		_, err := f.Users.Login(ctx, "carol", "pw")
		assert.NoError(t, err)
	})

	t.Run("admin account needs a logged-in admin", func(t *testing.T) {
		f := testutil.NewFixture()

		assert.False(t, f.Shop.AddUser(ctx, nil, "root2", "pw", true), "logged out")

		alice := f.MustLogin("alice", "secret")
		assert.False(t, f.Shop.AddUser(ctx, alice, "root2", "pw", true), "non-admin")

		admin := f.MustLogin("admin", "admin")
		assert.True(t, f.Shop.AddUser(ctx, admin, "root2", "pw", true))

		created, err := f.Users.Get(ctx, "root2")
		require.NoError(t, err)
		assert.True(t, created.Admin)
	})

	t.Run("duplicate username reports false", func(t *testing.T) {
		f := testutil.NewFixture()
		assert.False(t, f.Shop.AddUser(ctx, nil, "alice", "pw", false))
	})
}

func TestRemoveUser(t *testing.T) {
	ctx := context.Background()

	t.Run("self-deletion with correct password", func(t *testing.T) {
		f := testutil.NewFixture()
		alice := f.MustLogin("alice", "secret")

		assert.True(t, f.Shop.RemoveUser(ctx, alice, "alice", "secret"))
		_, err := f.Users.Get(ctx, "alice")
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("self-deletion with wrong password fails", func(t *testing.T) {
		f := testutil.NewFixture()
		alice := f.MustLogin("alice", "secret")

		assert.False(t, f.Shop.RemoveUser(ctx, alice, "alice", "wrong"))
		_, err := f.Users.Get(ctx, "alice")
		assert.NoError(t, err)
	})

	t.Run("non-admin cannot delete another account", func(t *testing.T) {
		f := testutil.NewFixture()
		require.True(t, f.Shop.AddUser(ctx, nil, "carol", "pw", false))
		alice := f.MustLogin("alice", "secret")

		assert.False(t, f.Shop.RemoveUser(ctx, alice, "carol", "secret"))
		_, err := f.Users.Get(ctx, "carol")
		assert.NoError(t, err)
	})

	t.Run("admin force-deletes with their own password", func(t *testing.T) {
		f := testutil.NewFixture()
		admin := f.MustLogin("admin", "admin")

		// "admin" re-proves their own password; alice's is never needed.
		assert.True(t, f.Shop.RemoveUser(ctx, admin, "alice", "admin"))
		_, err := f.Users.Get(ctx, "alice")
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("admin with wrong own password fails", func(t *testing.T) {
		f := testutil.NewFixture()
		admin := f.MustLogin("admin", "admin")

		assert.False(t, f.Shop.RemoveUser(ctx, admin, "alice", "secret"))
		_, err := f.Users.Get(ctx, "alice")
		assert.NoError(t, err)
	})

	t.Run("logged out fails", func(t *testing.T) {
		f := testutil.NewFixture()
		assert.False(t, f.Shop.RemoveUser(ctx, nil, "alice", "secret"))
	})
}

func TestAddBook(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixture()

	assert.True(t, f.Shop.AddBook(ctx, "T", "A", "12.50"))
	assert.False(t, f.Shop.AddBook(ctx, "T", "A", "not-a-price"))

	rows, err := f.Catalog.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Price.Equal(decimal.RequireFromString("12.50")))
}

func TestRegistry(t *testing.T) {
	f := testutil.NewFixture()
	reg := shop.NewRegistry()
	sess := f.MustLogin("alice", "secret")

	id := reg.Put(sess)
	assert.Same(t, sess, reg.Get(id))

	other := reg.Put(f.MustLogin("admin", "admin"))
	assert.NotEqual(t, id, other)

	reg.Revoke(id)
	assert.Nil(t, reg.Get(id))
	assert.NotNil(t, reg.Get(other))

	reg.Revoke("unknown") // no panic
}
