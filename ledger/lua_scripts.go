package ledger

import "github.com/redis/go-redis/v9"

// CommitScript 原子地提交一次拍賣狀態變更
//
//	KEYS[1]    - 拍賣的 hash，欄位 version 與 data
//	KEYS[2]    - 拍賣的出價紀錄 list
//	KEYS[3]    - 交易序號計數器
//	KEYS[4]    - event log stream
//	KEYS[5..]  - 需要加入拍賣 id 的身分索引 sorted set
//	ARGV[1]    - 預期的版本，0 代表新建立
//	ARGV[2]    - 編碼後的拍賣狀態
//	ARGV[3]    - 拍賣 ID
//	ARGV[4]    - 編碼後的出價，沒有出價時為空字串
//	ARGV[5]    - 事件數量 n
//	ARGV[6..]  - 每個事件依序為 kind、時間(unix nano)、編碼後的 payload
//
// 返回值:
//
//	>0 - 本次提交的交易序號
//	-1 - 版本不符
//
// 流程:
//   - 1. 檢查版本，不符時不做任何寫入
//   - 2. 分配交易序號，確保大於 stream 中最後一筆事件
//   - 3. 寫入拍賣狀態、出價紀錄與索引
//   - 4. 以 <交易序號>-<索引> 作為 entry id 寫入事件
var CommitScript = redis.NewScript(`
local version = tonumber(redis.call('HGET', KEYS[1], 'version') or '0')
if version ~= tonumber(ARGV[1]) then
    return -1
end

local tx = redis.call('INCR', KEYS[3])
local last = redis.call('XREVRANGE', KEYS[4], '+', '-', 'COUNT', 1)
if #last > 0 then
    local last_tx = tonumber(string.match(last[1][1], '^(%d+)-'))
    if last_tx >= tx then
        tx = last_tx + 1
        redis.call('SET', KEYS[3], tx)
    end
end

redis.call('HSET', KEYS[1], 'version', version + 1, 'data', ARGV[2])
if ARGV[4] ~= '' then
    redis.call('RPUSH', KEYS[2], ARGV[4])
end
for i = 5, #KEYS do
    redis.call('ZADD', KEYS[i], 'NX', ARGV[3], ARGV[3])
end

local n = tonumber(ARGV[5])
for i = 0, n - 1 do
    local base = 6 + i * 3
    redis.call('XADD', KEYS[4], tx .. '-' .. i,
        'kind', ARGV[base],
        'tx', tx,
        'idx', i,
        'auction', ARGV[3],
        'ts', ARGV[base + 1],
        'data', ARGV[base + 2])
end

return tx
`)
