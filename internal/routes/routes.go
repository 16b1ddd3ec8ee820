package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"collecthub-backend/internal/controllers"
	"collecthub-backend/internal/realtime"
)

func Setup(app *fiber.App, hub *realtime.Hub) {

	api := app.Group("/api")

	api.Get("/verify", controllers.Verify)

	api.Post("/user/sign-up", controllers.SignUp)
	api.Post("/user/sign-in", controllers.SignIn)
	api.Get("/user/all", controllers.GetAllUsers)
	api.Put("/user/block", controllers.BlockUsers)
	api.Put("/user/unblock", controllers.UnblockUsers)
	api.Put("/user/give-admin", controllers.GiveAdmin)
	api.Put("/user/take-admin", controllers.TakeAdmin)
	api.Delete("/user/delete", controllers.DeleteUsers)
	api.Get("/user/email", controllers.GetEmail)
	api.Put("/user/theme/:theme", controllers.ChangeTheme)
	api.Put("/user/lang/:lang", controllers.ChangeLang)
	api.Get("/user/reset-password/:email", controllers.RequestPasswordReset)
	api.Post("/user/reset-password", controllers.ResetPassword)

	api.Post("/topic", controllers.CreateTopics)
	api.Get("/topic/all", controllers.GetAllTopics)

	api.Get("/collection/5largest", controllers.Get5Largest)
	api.Get("/collection/collection-for-editing/:collectionId", controllers.GetCollectionForEditing)
	api.Post("/collection", controllers.CreateCollection)
	api.Put("/collection/:collectionId", controllers.UpdateCollection)
	api.Get("/collection/collections-of-user/:userId", controllers.GetUserCollections)
	api.Get("/collection/:collectionId", controllers.GetCollection)
	api.Delete("/collection/:collectionId", controllers.DeleteCollection)

	api.Get("/item/last10", controllers.GetLast10)
	api.Get("/item/items-by-tag/:tagId", controllers.GetItemsByTag)
	api.Delete("/item/delete-many", controllers.DeleteItems)
	api.Post("/item/items-of-collection/:collectionId/:page", controllers.GetItemsOfCollection)
	api.Post("/item/download-items-of-collection/:collectionId", controllers.GetFilteredItems)
	api.Get("/item/for-editing/:itemId", controllers.GetItemForEditing)
	api.Get("/item/search-for/:searchFor", controllers.SearchFor)
	api.Post("/item/:collectionId", controllers.CreateItem)
	api.Get("/item/:itemId", controllers.GetItem)
	api.Put("/item/:itemId", controllers.UpdateItem)

	api.Post("/comment/:itemId", controllers.CreateComment)
	api.Delete("/comment/:commentId", controllers.DeleteComment)

	api.Get("/tag/popular", controllers.GetPopularTags)
	api.Get("/tag/by-start/:tagStart", controllers.GetTagsByStart)

	api.Get("/like/:itemId", controllers.GetItemLikeInfo)
	api.Post("/like/:itemId", controllers.CreateLike)
	api.Delete("/like/:itemId", controllers.DeleteLike)

	app.Use("/ws", controllers.WsUpgrade)
	app.Get("/ws/:itemId/:userId?", websocket.New(controllers.WatchItem(hub)))
}
