// Package redis connects to Redis with go-redis/v9 and exposes a health probe.
// credkit uses it to hold short-lived OAuth state tokens.
//
//	client, err := redis.Connect(ctx, config.MustLoad[redis.Config]())
//	if err != nil {
//		return err
//	}
//	defer client.Close()
package redis
