package utils

import (
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/mmdatafocus/ventures_backend/config"
)

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

/* generic functions */

func GetTypeName[T any]() string {
	var v T
	return reflect.TypeOf(v).Name()
}

func redisKey[T any](id string) string {
	return GetTypeName[T]() + ":" + id
}

// store instance under Type:id
func StoreRedis[T any](obj *T, id string) error {
	return config.SetRedisObject(redisKey[T](id), obj, GetCacheLifespan())
}

// get from redis
// returns nil if does not exist (or redis is disabled)
func RetrieveRedis[T any](id string) (*T, error) {
	var result *T
	exists, err := config.GetRedisObject(redisKey[T](id), &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return result, nil
}

func RemoveRedis[T any](id string) error {
	return config.RemoveRedisKey(redisKey[T](id))
}
