package middlewares

import (
	"fmt"
	"log"
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	mongodbadapter "github.com/casbin/mongodb-adapter/v3"
	"github.com/gin-gonic/gin"
)

var enforcer *casbin.Enforcer

const rbacModelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// InitCasbin initializes the Casbin enforcer with a MongoDB adapter and the
// policies the admin surface needs.
func InitCasbin(databaseURI string) error {
	adapter, err := mongodbadapter.NewAdapter(databaseURI)
	if err != nil {
		return fmt.Errorf("failed to create Casbin adapter: %w", err)
	}

	m, err := model.NewModelFromString(rbacModelText)
	if err != nil {
		return fmt.Errorf("failed to create Casbin model: %w", err)
	}

	enforcer, err = casbin.NewEnforcer(m, adapter)
	if err != nil {
		return fmt.Errorf("failed to create Casbin enforcer: %w", err)
	}
	if err := enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to load policy: %w", err)
	}

	ensureDefaultPolicies()
	log.Println("Casbin RBAC initialized")
	return nil
}

// ensureDefaultPolicies adds the admin-surface policies if absent
func ensureDefaultPolicies() {
	defaultPolicies := [][3]string{
		{"admin", "badge", "award"},
		{"admin", "catalog", "seed"},
	}
	for _, p := range defaultPolicies {
		exists, _ := enforcer.HasPolicy(p[0], p[1], p[2])
		if !exists {
			enforcer.AddPolicy(p[0], p[1], p[2])
		}
	}
	if err := enforcer.SavePolicy(); err != nil {
		log.Printf("Warning: failed to save policies: %v", err)
	}
}

// RBACMiddleware checks that the caller's role permits the action
func RBACMiddleware(resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Role not found"})
			c.Abort()
			return
		}

		allowed, err := enforcer.Enforce(roleVal.(string), resource, action)
		if err != nil {
			log.Printf("Casbin enforce error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Permission check failed"})
			c.Abort()
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}
