package handler

import (
	"github.com/gin-gonic/gin"
)

// Routes 路由依赖
type Routes struct {
	Users        *UserHandler
	Friendships  *FriendshipHandler
	Competences  *CompetenceHandler
	Auth         gin.HandlerFunc // JWT认证中间件
	LoginLimiter gin.HandlerFunc // 登录限流中间件，可为 nil
}

// Register 绑定业务路由
func (rt *Routes) Register(router gin.IRouter) {
	auth := router.Group("/auth")
	{
		// 公开接口（无需认证）
		auth.POST("/register", rt.Users.Register)
		if rt.LoginLimiter != nil {
			auth.POST("/login", rt.LoginLimiter, rt.Users.Login)
		} else {
			auth.POST("/login", rt.Users.Login)
		}
	}

	users := router.Group("/users")
	users.Use(rt.Auth)
	{
		users.GET("/me", rt.Users.Me)
	}

	friendships := router.Group("/friendships")
	friendships.Use(rt.Auth)
	{
		friendships.POST("", rt.Friendships.Create)                    // 发起好友请求
		friendships.GET("", rt.Friendships.ListFriends)                // 好友列表
		friendships.GET("/pending", rt.Friendships.ListPending)        // 待我处理的请求
		friendships.GET("/pending/count", rt.Friendships.PendingCount) // 待处理数量
		friendships.GET("/:id", rt.Friendships.Get)                    // 查看关系
		friendships.PATCH("/:id", rt.Friendships.Accept)               // 接受请求
		friendships.DELETE("/:id", rt.Friendships.Remove)              // 删除关系
	}

	// 技能接口不要求认证
	competences := router.Group("/competences")
	{
		competences.POST("", rt.Competences.Create)
		competences.GET("", rt.Competences.List)
		competences.GET("/:id", rt.Competences.Get)
		competences.PATCH("/:id", rt.Competences.Update)
		competences.DELETE("/:id", rt.Competences.Remove)
	}
}
